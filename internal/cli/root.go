package cli

import (
	"github.com/spf13/cobra"

	"recap/internal/client"
	"recap/internal/version"
)

// Dependencies carries everything the command tree needs. Commands that
// talk to the daemon share the one client; the TUI is launched through it
// as well.
type Dependencies struct {
	Client *client.Client
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recap",
		Short:         "Record, transcribe, and review meetings from the terminal",
		Long:          "recap is a terminal meeting recorder. It keeps meetings, recordings, transcripts, and coaching feedback in a local daemon and renders them in a TUI or through these subcommands.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Build()
	rootCmd.SetVersionTemplate("recap {{.Version}}\n")

	rootCmd.AddCommand(NewUICmd(deps))
	rootCmd.AddCommand(NewMeetingsCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewCoachCmd(deps))
	rootCmd.AddCommand(NewCalendarCmd(deps))
	rootCmd.AddCommand(NewSettingsCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewDaemonCmd(deps))
	rootCmd.AddCommand(NewVersionCmd(deps))

	return rootCmd
}
