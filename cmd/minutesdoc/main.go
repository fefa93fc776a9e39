// Package main is the entry point for the minutesdoc CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/minutesdoc/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// ErrUsage marks invalid arguments or flags.
var ErrUsage = errors.New("usage error")

// cfg and logger are populated by loadConfig before any subcommand runs.
var (
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd is the base command for the minutesdoc CLI.
var rootCmd = &cobra.Command{
	Use:   "minutesdoc",
	Short: "Turn meeting minutes into formatted Word documents",
	Long: `minutesdoc reads meeting minutes (markdown, text, HTML, PDF or DOCX), asks a
remote model to analyze them and plan a document, and produces a .docx file.

When the remote document service is unavailable the document is authored
locally, so a conversion still completes without network access.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./minutesdoc.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})
}

// loadConfig layers defaults, .env, the YAML config file and the environment.
// An explicitly named config file must exist.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	required := cfgFile != ""
	if cfgFile == "" {
		cfgFile = "minutesdoc.yaml"
	}

	v := config.NewViper()
	if err := config.ReadFiles(v, ".env", cfgFile, required); err != nil {
		return err
	}
	cfg = config.Load(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose || cfg.Debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}
