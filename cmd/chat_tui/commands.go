package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/logging"
	"insurance-chat/internal/service"
	"insurance-chat/internal/tui"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	// La TUI ocupa la terminal: los logs van a archivo.
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting chat", zap.String("api_url", cfg.APIURL), zap.Bool("use_context", cfg.UseContext))

	m := tui.NewModel(tui.Options{
		Client:     newClient(logger),
		Logger:     logger,
		UseContext: cfg.UseContext,
		Markdown:   !plain,
		Context:    ctx,
	})
	result, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run chat: %w", err)
	}

	if final, ok := result.(tui.Model); ok {
		logger.Info("chat finished", zap.Int("messages", final.Session().Len()))
	}
	return nil
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Send one question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		svc := service.NewConversationService(newClient(logger), cfg.UseContext, logger)
		accepted, err := svc.Submit(cmd.Context(), strings.Join(args, " "))
		if !accepted && err == nil {
			return errors.New("empty question")
		}

		out := cmd.OutOrStdout()
		snap := svc.Snapshot()
		if snap.LastError() != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s%s%s\n", colorRed, snap.LastError(), colorReset)
			return err
		}
		msgs := snap.Transcript()
		reply := msgs[len(msgs)-1]
		fmt.Fprintln(out, reply.Text)
		if reply.HasSources() {
			fmt.Fprintln(out, domain.SourcesLine(reply.Sources))
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show answering service health and info",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		client := newClient(logger)
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		out := cmd.OutOrStdout()
		health, err := client.Health(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s%s%s\n", colorRed, service.AdvisoryMessage, colorReset)
			return fmt.Errorf("health check %s: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(out, "status:        %s\n", health.Status)
		fmt.Fprintf(out, "llm:           %s\n", health.OllamaStatus)
		fmt.Fprintf(out, "vector store:  %s\n", health.VectorStoreStatus)

		info, err := client.Info(ctx)
		if err != nil {
			logger.Warn("info request failed", zap.Error(err))
			return nil
		}
		fmt.Fprintf(out, "model:         %s\n", info.Model)
		fmt.Fprintf(out, "documents:     %v\n", info.DocumentsIndexed)
		fmt.Fprintf(out, "vector path:   %s\n", info.VectorStorePath)
		return nil
	},
}

var (
	evalSample int
	evalOut    string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the reference questions against the service and report metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		svc := service.NewEvaluationService(newClient(logger), logger)
		report, err := svc.Run(cmd.Context(), service.DefaultEvalCases(), evalSample, cfg.UseContext)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range report.Results {
			fmt.Fprintf(out, "%s[%s]%s %s\n", colorCyan, r.Category, colorReset, r.Question)
			if r.Error != "" {
				fmt.Fprintf(out, "  %serror: %s%s\n", colorRed, r.Error, colorReset)
				continue
			}
			fmt.Fprintf(out, "  overlap=%.2f latency=%s\n", r.WordOverlapRatio, r.Latency.Round(time.Millisecond))
			if line := domain.SourcesLine(r.Sources); line != "" {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}

		s := report.Summary
		fmt.Fprintf(out, "%s%d/%d answered (%.0f%%), avg overlap %.2f, %d with sources%s\n",
			colorGreen, s.SuccessfulResponses, s.TotalQuestions, s.SuccessRate*100, s.AverageWordOverlap, s.WithSources, colorReset)

		if evalOut != "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			if err := os.WriteFile(evalOut, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "results saved to %s\n", evalOut)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().IntVar(&evalSample, "sample", 5, "number of questions to run (0 = all)")
	evalCmd.Flags().StringVar(&evalOut, "out", "", "write the JSON report to this file")
}
