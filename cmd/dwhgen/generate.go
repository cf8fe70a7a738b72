package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tordrt/dwhgen"
	"github.com/tordrt/dwhgen/internal/logical"
)

func newGenerateCmd(a *app) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate all artifacts for a logical model",
		Long: `Generate reads a logical model, derives the physical, staging and HDA models
and renders their DDL, load procedures and lineage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Model == "" {
				return fmt.Errorf("a model is required (--model or model in the config file)")
			}

			m, err := logical.LoadFile(a.cfg.Model)
			if err != nil {
				return err
			}
			a.logger.Debug().Str("model", a.cfg.Model).Int("domains", len(m.Domains)).Msg("loaded model")

			opts, err := a.options()
			if err != nil {
				return err
			}

			artifacts, err := dwhgen.Generate(cmd.Context(), m, opts)
			if err != nil {
				return err
			}

			return a.writeArtifacts(cmd, artifacts, outputFile)
		},
	}

	cmd.Flags().StringP("model", "m", "", "Logical model YAML file")
	cmd.Flags().StringP("output-dir", "d", "", "Output directory (default: generated)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write all artifacts to one file instead (- for stdout)")

	return cmd
}
