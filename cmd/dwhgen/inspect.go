package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tordrt/dwhgen"
	"github.com/tordrt/dwhgen/internal/formatter"
	"github.com/tordrt/dwhgen/internal/logical"
	"github.com/tordrt/dwhgen/internal/schema"
	"github.com/tordrt/dwhgen/internal/transform"
)

const (
	layerSource  = "source"
	layerStaging = "staging"
	layerHDA     = "hda"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		source sourceFlags
		format string
		layer  string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a model layer or its lineage",
		Long: `Inspect prints the source, staging or HDA model derived from a logical model
or a database as text or markdown, or the column lineage of a derived layer.
With --output-dir each table is written to its own file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.loadSource(cmd, &source)
			if err != nil {
				return err
			}

			var result *transform.Result
			switch layer {
			case layerSource:
				if format == formatter.FormatLineage {
					return fmt.Errorf("the source layer has no lineage, use --layer staging or hda")
				}
			case layerStaging:
				result, err = transform.SourceToStaging(src)
			case layerHDA:
				result, err = transform.SourceToHDA(src)
			default:
				return fmt.Errorf("unsupported layer: %s (use source, staging or hda)", layer)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatter.FormatLineage {
				if cmd.Flags().Changed("output-dir") {
					return fmt.Errorf("--output-dir is not supported with --format lineage")
				}
				return formatter.NewLineageFormatter(out).Format(result.Mapping)
			}

			m := src
			if result != nil {
				m = result.Model
			}

			var f formatter.Formatter
			switch {
			case cmd.Flags().Changed("output-dir"):
				if format != formatter.FormatText && format != formatter.FormatMarkdown {
					return fmt.Errorf("unsupported format: %s (use text or markdown)", format)
				}
				f = formatter.NewMultiFileFormatter(a.cfg.OutputDir, format)
			case format == formatter.FormatText:
				f = formatter.NewTextFormatter(out)
			case format == formatter.FormatMarkdown:
				f = formatter.NewMarkdownFormatter(out)
			default:
				return fmt.Errorf("unsupported format: %s (use text, markdown or lineage)", format)
			}

			if err := f.Format(m); err != nil {
				return err
			}
			if cmd.Flags().Changed("output-dir") {
				a.logger.Info().Str("dir", a.cfg.OutputDir).Str("layer", layer).Msg("wrote model files")
			}
			return nil
		},
	}

	source.register(cmd)
	cmd.Flags().StringP("model", "m", "", "Logical model YAML file")
	cmd.Flags().StringVarP(&format, "format", "f", formatter.FormatText, "Output format: text, markdown or lineage")
	cmd.Flags().StringVarP(&layer, "layer", "l", layerSource, "Model layer: source, staging or hda")
	cmd.Flags().StringP("output-dir", "d", "", "Write one file per table into this directory")

	return cmd
}

// loadSource builds the source model. A database named on the command line
// wins over the configured model, which wins over a configured database.
func (a *app) loadSource(cmd *cobra.Command, source *sourceFlags) (*schema.Model, error) {
	url, err := source.url("")
	if err != nil {
		return nil, err
	}
	if url == "" && cmd.Flags().Changed("source") {
		url = a.cfg.Source
	}
	if url != "" && cmd.Flags().Changed("model") {
		return nil, fmt.Errorf("--model cannot be combined with a database source")
	}

	if url == "" && a.cfg.Model != "" {
		m, err := logical.LoadFile(a.cfg.Model)
		if err != nil {
			return nil, err
		}
		types, err := a.cfg.TypePolicy()
		if err != nil {
			return nil, err
		}
		return transform.NewLogicalTransformer(types).Transform(m)
	}

	if url == "" {
		url = a.cfg.Source
	}
	if url == "" {
		return nil, fmt.Errorf("one of --model, --db-url, --mysql-url, --sqlite, --duckdb or --source must be specified")
	}

	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	s, err := dwhgen.ExtractSchema(cmd.Context(), url, opts)
	if err != nil {
		return nil, err
	}
	return &schema.Model{Schemas: []*schema.Schema{s}}, nil
}
