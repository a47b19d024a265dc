package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/calllog"
	"github.com/abhisek/lingobuddy/internal/config"
	"github.com/abhisek/lingobuddy/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "lingobuddy",
	Short: "Guided language-tutoring chat",
	Long:  "LingoBuddy: practice a language by chatting with an AI tutor in immersion, crosstalk or mission mode.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/lingobuddy/config.yaml)")
	flags.String("endpoint", "", "Tutoring service URL (overrides LINGOBUDDY_ENDPOINT)")
	flags.String("log-level", "", "Log level: debug, info, warn, error or off")
	flags.Bool("call-log", false, "Record every service call in the SQLite call log")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if cmd.Flags().Changed("call-log") {
		cfg.CallLog.Enabled, _ = cmd.Flags().GetBool("call-log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fileLogger builds the logger for interactive commands, which must not
// write to the terminal.
func fileLogger(cfg *config.Config) (*zap.Logger, error) {
	path := cfg.Log.File
	if path == "" {
		p, err := logging.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return logging.New(cfg.Log.Level, path)
}

// newSender builds the service client, wrapped with the call log when it
// is enabled. The returned close function releases the call log.
func newSender(cfg *config.Config, logger *zap.Logger) (api.Sender, func() error, error) {
	var sender api.Sender = api.NewClient(cfg.Endpoint,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
		api.WithUserAgent("lingobuddy/"+version),
	)
	if !cfg.CallLog.Enabled {
		return sender, func() error { return nil }, nil
	}

	st, err := openCallLog(cfg)
	if err != nil {
		return nil, nil, err
	}
	return api.WithCallLog(sender, st, logger), st.Close, nil
}

func openCallLog(cfg *config.Config) (*calllog.Store, error) {
	path := cfg.CallLog.Path
	if path == "" {
		p, err := calllog.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve call log path: %w", err)
		}
		path = p
	} else if err := calllog.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create call log directory: %w", err)
	}

	st, err := calllog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open call log: %w", err)
	}
	return st, nil
}
