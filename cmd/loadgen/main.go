// Package main provides the recruiting load generator CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/loadgen"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := &loadgen.Config{}
	var globalTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Drive a recruiting service end to end",
		Long: `Generate a candidate pool, upsert it concurrently, rank it against a
needs profile and verify the responses.

Examples:
  loadgen                                  # 1000 candidates against localhost:9080
  loadgen --candidates 50000 --workers 16  # Heavier run
  loadgen --url http://host:8080 --verbose # Custom target, debug logging
  loadgen --output pool.json --log run.log # Keep the generated pool
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := loadgen.SetupLogging(cfg.LogFile, cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), globalTimeout)
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := loadgen.Run(ctx, cfg); err != nil {
				logger.Get().Error(ctx, "load run failed", logger.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", loadgen.DefaultBaseURL, "Base URL of the service")
	cmd.Flags().StringVar(&cfg.ProgramID, "program", loadgen.DefaultProgramID, "Program ID the run acts on")
	cmd.Flags().IntVar(&cfg.Candidates, "candidates", loadgen.DefaultCandidates, "Number of candidates to generate")
	cmd.Flags().IntVar(&cfg.TopN, "top", loadgen.DefaultTopN, "Number of ranked candidates to fetch and track")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "Concurrent workers (default CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", loadgen.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&globalTimeout, "global-timeout", 10*time.Minute, "Timeout for the whole run")
	cmd.Flags().StringVar(&cfg.OutputFile, "output", "", "Write generated candidates to this JSON file")
	cmd.Flags().StringVar(&cfg.LogFile, "log", "", "Log file (default loadgen_TIMESTAMP.log)")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")

	return cmd
}
