// Package cli implements the treerag command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/treerag/internal/app"
	"github.com/dgallion1/treerag/internal/config"
	"github.com/dgallion1/treerag/internal/version"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "treerag",
	Short: "Index documents into section trees and search them",
	Long: `treerag converts PDF, DOCX, HTML, Markdown, CSV and text files into
heading trees, stores them, and answers keyword searches over sections.

Configuration is read from the environment (STORE_BACKEND, DATA_DIR, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("treerag %s\n", version.String()))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// newLogger logs text to stderr so stdout stays clean for command output and
// the MCP protocol.
func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// openApp loads configuration from the environment and assembles the
// service. The caller closes it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), config.Load(), log)
}
