package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"recap/internal/client"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, recording, and coaching status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			color := shouldColorize(stdout)
			ctx := cmd.Context()

			status, err := deps.Client.Status(ctx)
			if err != nil {
				if client.IsUnavailable(err) {
					fmt.Fprintln(stdout, colorize("● daemon not running", ansiRed, color))
					return nil
				}
				return err
			}

			line := fmt.Sprintf("  version=%s pid=%d", status.Version, status.PID)
			if started, perr := time.Parse(time.RFC3339, status.StartedAt); perr == nil {
				line += fmt.Sprintf(" up=%s", formatUptime(time.Since(started)))
			}
			fmt.Fprintln(stdout, colorize("● daemon running", ansiGreen, color)+line)

			recording, err := deps.Client.RecordingState(ctx)
			if err != nil {
				return err
			}
			if recording.IsRecording {
				label := shortID(recording.MeetingID)
				if recording.Meeting != nil {
					label = fmt.Sprintf("%q", recording.Meeting.Title)
				}
				fmt.Fprintln(stdout, colorize(fmt.Sprintf("● recording %s", label), ansiYellow, color))
			} else {
				fmt.Fprintln(stdout, "○ not recording")
			}

			coaching, err := deps.Client.CoachingState(ctx)
			if err != nil {
				return err
			}
			if coaching.IsActive {
				fmt.Fprintln(stdout, colorize(fmt.Sprintf("● coaching %s session for %s", coaching.CoachingType, shortID(coaching.MeetingID)), ansiYellow, color))
			} else {
				fmt.Fprintln(stdout, "○ no coaching session")
			}

			return nil
		},
	}

	return cmd
}

func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		return fmt.Sprintf("%dh%dm", hours, int(d.Minutes())-hours*60)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd%dh", days, int(d.Hours())-days*24)
}
