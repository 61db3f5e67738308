package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insurance-chat/internal/config"
	"insurance-chat/internal/llm"
	"insurance-chat/internal/logging"
)

var (
	apiURL    string
	noContext bool
	plain     bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chat_tui",
	Short: "Terminal chat client for the insurance assistant",
	Long: `chat_tui talks to the insurance answering service (POST /chat) and keeps
the conversation in memory for the lifetime of the process.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("warning: loading .env: %v", err)
		}
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if noContext {
			cfg.UseContext = false
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "answering service base URL (overrides CHAT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&noContext, "no-context", false, "send use_context=false")

	chatCmd.Flags().BoolVar(&plain, "plain", false, "render answers as plain text instead of markdown")
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())

	rootCmd.AddCommand(chatCmd, askCmd, healthCmd, evalCmd)
}

// newLogger arma el logger de los comandos no interactivos: stderr.
func newLogger() *zap.Logger {
	logger, err := logging.New(cfg.LogLevel, "")
	if err != nil {
		log.Printf("warning: %v, falling back to nop logger", err)
		return zap.NewNop()
	}
	return logger
}

func newClient(logger *zap.Logger) *llm.HTTPClient {
	return llm.NewHTTPClient(cfg.APIURL, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
