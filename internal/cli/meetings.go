package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recap/internal/agenda"
	"recap/internal/client"
	"recap/internal/types"
)

func NewMeetingsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Manage meetings",
	}

	cmd.AddCommand(newMeetingsListCmd(deps))
	cmd.AddCommand(newMeetingsShowCmd(deps))
	cmd.AddCommand(newMeetingsCreateCmd(deps))
	cmd.AddCommand(newMeetingsUpdateCmd(deps))
	cmd.AddCommand(newMeetingsDeleteCmd(deps))

	return cmd
}

func newMeetingsListCmd(deps *Dependencies) *cobra.Command {
	var past bool
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		Long:  "List upcoming meetings. Use --past for finished meetings with content, or --all for the raw store including deletion tombstones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			meetings, err := deps.Client.ListMeetings(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			visible := meetings
			switch {
			case all:
			case past:
				visible = agenda.Past(meetings, now)
			default:
				visible = agenda.Upcoming(meetings, now)
			}

			stdout := cmd.OutOrStdout()
			if len(visible) == 0 {
				fmt.Fprintln(stdout, "no meetings")
				return nil
			}

			rows := make([][]string, 0, len(visible))
			for _, meeting := range visible {
				rows = append(rows, []string{
					shortID(meeting.ID),
					meeting.StartsAt.Local().Format("2006-01-02 15:04"),
					formatDuration(meeting),
					string(meeting.Status),
					truncateCell(meeting.Title, 48),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"ID", "WHEN", "DUR", "STATUS", "TITLE"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&past, "past", false, "show past meetings instead of upcoming")
	cmd.Flags().BoolVar(&all, "all", false, "show every stored meeting, including tombstones")

	return cmd
}

func newMeetingsShowCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show one meeting in full",
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
			meeting, err := deps.Client.GetMeeting(ctx, id)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "ID:       %s\n", meeting.ID)
			fmt.Fprintf(stdout, "Title:    %s\n", meeting.Title)
			fmt.Fprintf(stdout, "Starts:   %s\n", meeting.StartsAt.Local().Format(time.RFC1123))
			fmt.Fprintf(stdout, "Ends:     %s\n", meeting.EffectiveEnd().Local().Format(time.RFC1123))
			fmt.Fprintf(stdout, "Status:   %s\n", meeting.Status)
			if meeting.CalendarEventID != "" {
				fmt.Fprintf(stdout, "Calendar: %s\n", meeting.CalendarEventID)
			}
			if strings.TrimSpace(meeting.Notes) != "" {
				fmt.Fprintf(stdout, "\nNotes:\n%s\n", meeting.Notes)
			}
			if strings.TrimSpace(meeting.Transcript) != "" {
				fmt.Fprintf(stdout, "\nTranscript:\n%s\n", meeting.Transcript)
			}
			return nil
		},
	}

	return cmd
}

func newMeetingsCreateCmd(deps *Dependencies) *cobra.Command {
	var title string
	var at string
	var duration int
	var notes string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			req := client.CreateMeetingRequest{
				Title: strings.TrimSpace(title),
				Notes: notes,
			}
			if strings.TrimSpace(at) != "" {
				starts, err := parseWhen(at, time.Now())
				if err != nil {
					return err
				}
				req.StartsAt = starts
			}
			if duration < 0 {
				return errors.New("--duration must be a positive number of minutes")
			}
			req.DurationMin = duration

			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			meeting, err := deps.Client.CreateMeeting(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q starting %s\n",
				shortID(meeting.ID), meeting.Title, meeting.StartsAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "meeting title (required)")
	cmd.Flags().StringVar(&at, "at", "", "start time: 15:04, 2006-01-02 15:04, or RFC3339 (default now)")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in minutes (default from settings)")
	cmd.Flags().StringVar(&notes, "notes", "", "meeting notes")

	return cmd
}

func newMeetingsUpdateCmd(deps *Dependencies) *cobra.Command {
	var title string
	var at string
	var duration int
	var notes string
	var transcriptFile string

	cmd := &cobra.Command{
		Use:   "update <meeting-id>",
		Short: "Update fields of a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.UpdateMeetingRequest{}
			changed := false

			if cmd.Flags().Changed("title") {
				req.Title = &title
				changed = true
			}
			if cmd.Flags().Changed("at") {
				starts, err := parseWhen(at, time.Now())
				if err != nil {
					return err
				}
				req.StartsAt = &starts
				changed = true
			}
			if cmd.Flags().Changed("duration") {
				if duration < 0 {
					return errors.New("--duration must be a positive number of minutes")
				}
				req.DurationMin = &duration
				changed = true
			}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
				changed = true
			}
			if cmd.Flags().Changed("transcript-file") {
				data, err := os.ReadFile(transcriptFile)
				if err != nil {
					return err
				}
				transcript := string(data)
				req.Transcript = &transcript
				changed = true
			}
			if !changed {
				return errors.New("nothing to update; pass at least one field flag")
			}

			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			id, err := resolveMeetingID(ctx, deps, args[0])
			if err != nil {
				return err
			}
			meeting, err := deps.Client.UpdateMeeting(ctx, id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %q\n", shortID(meeting.ID), meeting.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&at, "at", "", "new start time: 15:04, 2006-01-02 15:04, or RFC3339")
	cmd.Flags().IntVar(&duration, "duration", 0, "new duration in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "replacement notes")
	cmd.Flags().StringVar(&transcriptFile, "transcript-file", "", "file whose contents replace the transcript")

	return cmd
}

func newMeetingsDeleteCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <meeting-id>",
		Short: "Delete a meeting",
		Long:  "Delete a meeting. Calendar-linked meetings are kept as tombstones so the next sync does not resurrect them.",
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
			if err := deps.Client.DeleteMeeting(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "meeting deleted")
			return nil
		},
	}

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveMeetingID expands a unique ID prefix so the short IDs printed by
// list work as arguments. Unknown values pass through for the daemon to
// report not-found.
func resolveMeetingID(ctx context.Context, deps *Dependencies, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("meeting id is required")
	}
	meetings, err := deps.Client.ListMeetings(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, meeting := range meetings {
		if meeting.ID == raw {
			return raw, nil
		}
		if strings.HasPrefix(meeting.ID, raw) {
			matches = append(matches, meeting.ID)
		}
	}
	switch len(matches) {
	case 0:
		return raw, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("meeting id %q is ambiguous (%d matches)", raw, len(matches))
	}
}

func formatDuration(meeting types.Meeting) string {
	minutes := int(meeting.EffectiveEnd().Sub(meeting.StartsAt).Minutes())
	if minutes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dm", minutes)
}

// parseWhen accepts the same start-time shapes as the TUI's new-meeting
// form: a bare clock time lands on today.
func parseWhen(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", raw, now.Location()); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("start time %q must look like 15:04, 2006-01-02 15:04, or RFC3339", raw)
}
