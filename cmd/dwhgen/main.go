package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tordrt/dwhgen"
	"github.com/tordrt/dwhgen/internal/config"
	"github.com/tordrt/dwhgen/internal/logging"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	configFile string
	cfg        *config.Config
	logger     zerolog.Logger
	stderr     io.Writer
}

func newApp() *app {
	return &app{logger: zerolog.Nop(), stderr: os.Stderr}
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

// rootCmd builds the command tree bound to a.
func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dwhgen",
		Short: "Generate data warehouse staging and history load code",
		Long: `dwhgen turns a logical model, or the tables of an existing PostgreSQL, MySQL,
SQLite or DuckDB database, into SQL Server staging and historical data archive
(HDA) tables, load procedures, point-in-time functions and lineage documentation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: dwhgen.yaml in the working directory)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().String("templates-dir", "", "Directory with templates overriding the built-in ones")

	rootCmd.AddCommand(newGenerateCmd(a), newExtractCmd(a), newInspectCmd(a))
	return rootCmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	if cfg.File != "" {
		a.logger.Debug().Str("file", cfg.File).Msg("loaded config")
	}
	return nil
}

// options converts the configuration into generation options.
func (a *app) options() (*dwhgen.Options, error) {
	types, err := a.cfg.TypePolicy()
	if err != nil {
		return nil, err
	}

	return &dwhgen.Options{
		Tables:        cleanTableList(a.cfg.Tables),
		ExcludeTables: cleanTableList(a.cfg.ExcludeTables),
		SchemaName:    a.cfg.Schema,
		Types:         types,
		TemplatesDir:  a.cfg.TemplatesDir,
		Logger:        &a.logger,
	}, nil
}

// writeArtifacts writes to the --output file ("-" for stdout) when given,
// otherwise to the configured output directory.
func (a *app) writeArtifacts(cmd *cobra.Command, artifacts *dwhgen.Artifacts, outputFile string) error {
	if outputFile == "" {
		if err := dwhgen.WriteArtifacts(artifacts, &dwhgen.OutputOptions{OutputDir: a.cfg.OutputDir}); err != nil {
			return err
		}
		a.logger.Info().
			Str("dir", a.cfg.OutputDir).
			Int("files", len(artifacts.Files)).
			Str("generation", artifacts.Header.GenerationID).
			Msg("wrote artifacts")
		return nil
	}

	if outputFile == "-" {
		return dwhgen.WriteArtifacts(artifacts, &dwhgen.OutputOptions{Writer: cmd.OutOrStdout()})
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			_, _ = fmt.Fprintf(a.stderr, "warning: failed to close output file: %v\n", err)
		}
	}()

	return dwhgen.WriteArtifacts(artifacts, &dwhgen.OutputOptions{Writer: f})
}

// cleanTableList trims names and drops empty ones.
func cleanTableList(tables []string) []string {
	var out []string
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
