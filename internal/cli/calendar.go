package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCalendarCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Work with the calendar feed",
	}

	cmd.AddCommand(newCalendarSyncCmd(deps))

	return cmd
}

func newCalendarSyncCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import meetings from the calendar feed",
		Long:  "Import the local calendar feed file. New events become meetings, changed events update their meetings, and events starting soon are marked ready to record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			result, err := deps.Client.SyncCalendar(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "calendar synced: %d imported, %d updated, %d ready\n",
				result.Imported, result.Updated, result.Ready)
			return nil
		},
	}

	return cmd
}
