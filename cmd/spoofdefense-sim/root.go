package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spoofdefense-sim/internal/logging"
)

var (
	logLevel  string
	logOutput string
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "spoofdefense-sim",
	Short: "GPS spoofing defense simulation toolkit",
	Long: "spoofdefense-sim simulates a drone swarm approaching a sensitive area and an operator " +
		"diverting it with a GPS spoofer. It runs headless, as a terminal console, or replays recorded telemetry.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		out, err := openLogOutput(cmd, logOutput)
		if err != nil {
			return err
		}
		l := logging.New(out, level)
		slog.SetDefault(l)
		cmd.SetContext(logging.NewContext(cmd.Context(), l))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

// openLogOutput resolves where logs go. The console owns the terminal, so its
// logs are dropped unless a file is given.
func openLogOutput(cmd *cobra.Command, path string) (io.Writer, error) {
	if path == "" {
		if cmd.Name() == "tui" {
			return io.Discard, nil
		}
		return os.Stderr, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}
	logCloser = f
	return f, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "", "Write logs to this file instead of stderr")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}
