package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"recap/internal/types"
)

func NewSettingsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change daemon settings",
	}

	cmd.AddCommand(newSettingsGetCmd(deps))
	cmd.AddCommand(newSettingsSetCmd(deps))

	return cmd
}

func newSettingsGetCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			settings, err := deps.Client.GetSettings(ctx)
			if err != nil {
				return err
			}
			printSettings(cmd, settings)
			return nil
		},
	}

	return cmd
}

func newSettingsSetCmd(deps *Dependencies) *cobra.Command {
	var autoRecord bool
	var defaultDuration int
	var calendarFeed string
	var coachingEnabled bool
	var coachingType string
	var language string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long:  "Change settings. Only the flags you pass are sent; everything else keeps its stored value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := &types.SettingsPatch{}
			changed := false

			if cmd.Flags().Changed("auto-record") {
				patch.AutoRecord = &autoRecord
				changed = true
			}
			if cmd.Flags().Changed("default-duration") {
				if defaultDuration <= 0 {
					return errors.New("--default-duration must be a positive number of minutes")
				}
				patch.DefaultDurationMin = &defaultDuration
				changed = true
			}
			if cmd.Flags().Changed("calendar-feed") {
				patch.CalendarFeed = &calendarFeed
				changed = true
			}
			if cmd.Flags().Changed("coaching") {
				patch.CoachingEnabled = &coachingEnabled
				changed = true
			}
			if cmd.Flags().Changed("coaching-type") {
				ct, ok := types.NormalizeCoachingType(coachingType)
				if !ok {
					return fmt.Errorf("unknown coaching type %q (general, sales, interview, presentation)", coachingType)
				}
				normalized := string(ct)
				patch.CoachingType = &normalized
				changed = true
			}
			if cmd.Flags().Changed("language") {
				patch.Language = &language
				changed = true
			}
			if !changed {
				return errors.New("nothing to change; pass at least one setting flag")
			}

			ctx := cmd.Context()
			if err := deps.Client.EnsureDaemon(ctx); err != nil {
				return err
			}
			settings, err := deps.Client.UpdateSettings(ctx, patch)
			if err != nil {
				return err
			}
			printSettings(cmd, settings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoRecord, "auto-record", false, "start recording automatically for ready meetings")
	cmd.Flags().IntVar(&defaultDuration, "default-duration", 0, "default meeting duration in minutes")
	cmd.Flags().StringVar(&calendarFeed, "calendar-feed", "", "path to the calendar feed file")
	cmd.Flags().BoolVar(&coachingEnabled, "coaching", false, "enable live coaching")
	cmd.Flags().StringVar(&coachingType, "coaching-type", "", "coaching type: general, sales, interview, presentation")
	cmd.Flags().StringVar(&language, "language", "", "transcript language code")

	return cmd
}

func printSettings(cmd *cobra.Command, settings types.Settings) {
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "auto-record:      %t\n", settings.AutoRecord)
	fmt.Fprintf(stdout, "default-duration: %dm\n", settings.DefaultDurationMin)
	feed := settings.CalendarFeed
	if feed == "" {
		feed = "(default)"
	}
	fmt.Fprintf(stdout, "calendar-feed:    %s\n", feed)
	fmt.Fprintf(stdout, "coaching:         %t\n", settings.CoachingEnabled)
	fmt.Fprintf(stdout, "coaching-type:    %s\n", settings.CoachingType)
	fmt.Fprintf(stdout, "language:         %s\n", settings.Language)
}
