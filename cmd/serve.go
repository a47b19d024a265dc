package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lingobuddy/internal/llm"
	"github.com/abhisek/lingobuddy/internal/logging"
	"github.com/abhisek/lingobuddy/internal/tutorserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local tutoring endpoint backed by an LLM provider",
	Long: `Serve POST /lingoBuddy on the given address using an LLM provider.

The provider is chosen from --provider, the llm section of the config file,
or the first of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY and
OPENROUTER_API_KEY that is set. Use --provider mock to serve canned replies
without an API key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Server.Addr = v
		}
		if v, _ := cmd.Flags().GetString("provider"); v != "" {
			cfg.LLM.Provider = v
		}
		if v, _ := cmd.Flags().GetString("model"); v != "" {
			cfg.LLM.Model = v
		}

		// The server owns no terminal UI, so it logs to stderr unless a
		// file is configured.
		logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		pcfg := cfg.ProviderConfig()
		if err := pcfg.Validate(); err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := llm.NewProvider(ctx, pcfg, logger)
		if err != nil {
			return err
		}
		logger.Info("tutor model ready",
			zap.String("provider", pcfg.Provider),
			zap.String("model", provider.ModelID()),
		)

		handler := tutorserver.NewHandler(provider,
			tutorserver.WithLogger(logger),
			tutorserver.WithTimeout(pcfg.Timeout),
		)
		srv := tutorserver.NewServer(cfg.Server.Addr, tutorserver.NewRouter(handler, logger), logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter or mock")
	serveCmd.Flags().String("model", "", "Model name or alias for the provider")
}
