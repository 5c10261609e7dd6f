package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"recap/internal/client"
	"recap/internal/version"
)

func NewVersionCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show client and daemon versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "client: %s\n", version.Build())

			health, err := deps.Client.Health(cmd.Context())
			if err != nil {
				if client.IsUnavailable(err) {
					fmt.Fprintln(stdout, "daemon: not running")
					return nil
				}
				return err
			}
			fmt.Fprintf(stdout, "daemon: %s\n", health.Version)
			return nil
		},
	}

	return cmd
}
