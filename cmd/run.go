package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lingobuddy/internal/app"
	"github.com/abhisek/lingobuddy/internal/session"
)

// runApp loads configuration, builds the session controller and launches
// the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := fileLogger(cfg)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	sender, closeLog, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	logger.Info("starting tui", zap.String("endpoint", cfg.Endpoint))
	ctrl := session.New(sender, session.WithLogger(logger))
	return app.Run(cmd.Context(), ctrl)
}
