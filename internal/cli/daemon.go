package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"recap/internal/client"
)

func NewDaemonCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Control the background daemon",
	}

	cmd.AddCommand(newDaemonStartCmd(deps))
	cmd.AddCommand(newDaemonStopCmd(deps))

	return cmd
}

func newDaemonStartCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon if it is not running",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			health, err := deps.Client.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon running (version %s, pid %d)\n", health.Version, health.PID)
			return nil
		},
	}

	return cmd
}

func newDaemonStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := deps.Client.ShutdownDaemon(cmd.Context())
			if err != nil && !client.IsUnavailable(err) {
				return err
			}
			if client.IsUnavailable(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "daemon not running")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
			return nil
		},
	}

	return cmd
}
