package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Control recording",
	}

	cmd.AddCommand(newRecordStartCmd(deps))
	cmd.AddCommand(newRecordStopCmd(deps))
	cmd.AddCommand(newRecordStatusCmd(deps))

	return cmd
}

func newRecordStartCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <meeting-id>",
		Short: "Start recording a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			id, err := resolveMeetingID(ctx, deps, args[0])
			if err != nil {
				return err
			}
			state, err := deps.Client.StartRecording(ctx, id)
			if err != nil {
				return err
			}
			if state.Meeting != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "recording %q\n", state.Meeting.Title)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recording %s\n", shortID(state.MeetingID))
			return nil
		},
	}

	return cmd
}

func newRecordStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			if err := deps.Client.StopRecording(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "recording stopped")
			return nil
		},
	}

	return cmd
}

func newRecordStatusCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recording state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			state, err := deps.Client.RecordingState(ctx)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if !state.IsRecording {
				fmt.Fprintln(stdout, "not recording")
				return nil
			}
			if state.Meeting != nil {
				fmt.Fprintf(stdout, "recording %q (%s)\n", state.Meeting.Title, shortID(state.MeetingID))
				return nil
			}
			fmt.Fprintf(stdout, "recording %s\n", shortID(state.MeetingID))
			return nil
		},
	}

	return cmd
}
