package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tordrt/dwhgen"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		source     sourceFlags
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Generate staging and HDA artifacts for an existing database",
		Long: `Extract reads table definitions from a PostgreSQL, MySQL, SQLite or DuckDB
database and renders staging and HDA artifacts that load from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := source.url(a.cfg.Source)
			if err != nil {
				return err
			}
			if url == "" {
				return fmt.Errorf("one of --db-url, --mysql-url, --sqlite, --duckdb or --source must be specified")
			}

			opts, err := a.options()
			if err != nil {
				return err
			}

			artifacts, err := dwhgen.GenerateFromDatabase(cmd.Context(), url, opts)
			if err != nil {
				return fmt.Errorf("failed to generate from database: %w", err)
			}

			return a.writeArtifacts(cmd, artifacts, outputFile)
		},
	}

	source.register(cmd)
	cmd.Flags().StringP("output-dir", "d", "", "Output directory (default: generated)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write all artifacts to one file instead (- for stdout)")

	return cmd
}
