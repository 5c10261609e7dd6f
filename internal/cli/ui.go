package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"recap/internal/app"
	"recap/internal/config"
	"recap/internal/logging"
)

func NewUICmd(deps *Dependencies) *cobra.Command {
	var debugLog bool

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the meeting TUI",
		Long:  "Open the interactive terminal UI. Starts the background daemon first when none is running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Client.EnsureDaemon(cmd.Context()); err != nil {
				return err
			}

			log := logging.Nop()
			if debugLog {
				file, err := openUILog()
				if err != nil {
					return err
				}
				defer file.Close()
				log = logging.New(file, logging.Debug)
			}
			return app.Run(deps.Client, log)
		},
	}

	cmd.Flags().BoolVar(&debugLog, "debug", false, "write a debug log to the data directory")

	return cmd
}

// openUILog appends to its own file rather than stderr: the alternate
// screen owns the terminal while the UI runs.
func openUILog() (*os.File, error) {
	logPath, err := config.UILogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
