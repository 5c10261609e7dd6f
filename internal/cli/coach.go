package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recap/internal/client"
	"recap/internal/types"
)

func NewCoachCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Run coaching sessions",
	}

	cmd.AddCommand(newCoachStartCmd(deps))
	cmd.AddCommand(newCoachStopCmd(deps))
	cmd.AddCommand(newCoachStatusCmd(deps))
	cmd.AddCommand(newCoachFeedbackCmd(deps))
	cmd.AddCommand(newCoachHistoryCmd(deps))
	cmd.AddCommand(newCoachWindowCmd(deps))

	return cmd
}

func newCoachStartCmd(deps *Dependencies) *cobra.Command {
	var coachingType string

	cmd := &cobra.Command{
		Use:   "start <meeting-id>",
		Short: "Start a coaching session for a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized := coachingType
			if strings.TrimSpace(coachingType) != "" {
				ct, ok := types.NormalizeCoachingType(coachingType)
				if !ok {
					return fmt.Errorf("unknown coaching type %q (general, sales, interview, presentation)", coachingType)
				}
				normalized = string(ct)
			}

			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			id, err := resolveMeetingID(ctx, deps, args[0])
			if err != nil {
				return err
			}
			if err := deps.Client.StartCoaching(ctx, client.StartCoachingRequest{
				MeetingID:    id,
				CoachingType: normalized,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coaching started for %s\n", shortID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&coachingType, "type", "", "coaching type: general, sales, interview, presentation")

	return cmd
}

func newCoachStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active coaching session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			if err := deps.Client.StopCoaching(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "coaching stopped")
			return nil
		},
	}

	return cmd
}

func newCoachStatusCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show coaching session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			state, err := deps.Client.CoachingState(ctx)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if !state.IsActive {
				fmt.Fprintln(stdout, "no coaching session")
				return nil
			}
			fmt.Fprintf(stdout, "coaching %s session for %s\n", state.CoachingType, shortID(state.MeetingID))
			return nil
		},
	}

	return cmd
}

func newCoachFeedbackCmd(deps *Dependencies) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "feedback <text>",
		Short: "Push a feedback entry into the active session",
		Long:  "Push one feedback entry into the active coaching session. This is the seam the coach window process uses; the daemon rejects entries when no session is running.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(args[0])
			if text == "" {
				return errors.New("feedback text is required")
			}
			if strings.TrimSpace(kind) != "" {
				if _, ok := types.NormalizeFeedbackKind(kind); !ok {
					return fmt.Errorf("unknown feedback kind %q (tip, warning, praise)", kind)
				}
			}

			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			entry, err := deps.Client.AddFeedback(ctx, client.AddFeedbackRequest{
				Kind: strings.TrimSpace(kind),
				Text: text,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "feedback recorded (%s)\n", entry.Kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "feedback kind: tip, warning, praise")

	return cmd
}

func newCoachHistoryCmd(deps *Dependencies) *cobra.Command {
	var meetingID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded coaching feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			entries, err := deps.Client.CoachingHistory(ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(meetingID) != "" {
				id, err := resolveMeetingID(ctx, deps, meetingID)
				if err != nil {
					return err
				}
				filtered := entries[:0]
				for _, entry := range entries {
					if entry.MeetingID == id {
						filtered = append(filtered, entry)
					}
				}
				entries = filtered
			}

			stdout := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "no feedback recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(entry.Kind),
					shortID(entry.MeetingID),
					truncateCell(entry.Text, 60),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"WHEN", "KIND", "MEETING", "FEEDBACK"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&meetingID, "meeting", "", "only show feedback for this meeting")

	return cmd
}

func newCoachWindowCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "window <open|close|status>",
		Short:     "Control the coach window",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"open", "close", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			switch args[0] {
			case "open":
				if err := deps.Client.OpenCoachWindow(ctx); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "coach window open")
				return nil
			case "close":
				if err := deps.Client.CloseCoachWindow(ctx); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "coach window closed")
				return nil
			case "status":
				open, err := deps.Client.CoachWindowStatus(ctx)
				if err != nil {
					return err
				}
				if open {
					fmt.Fprintln(stdout, "coach window open")
				} else {
					fmt.Fprintln(stdout, "coach window closed")
				}
				return nil
			default:
				return fmt.Errorf("unknown window action %q (open, close, status)", args[0])
			}
		},
	}

	return cmd
}
