package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalvas/oasgen/manifest"
	"github.com/vitalvas/oasgen/openapi"
)

// GenerateOptions captures the inputs of the generate command.
type GenerateOptions struct {
	Manifest string
	Out      string
	Format   string
	Validate bool
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	var opts GenerateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an OpenAPI document from a route manifest",
		Example: strings.TrimSpace(`  oasgen generate -m routes.yaml -o openapi.json
  oasgen --config oasgen.yaml generate -m routes.yaml --format yaml --validate`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
			if opts.Format == "" {
				opts.Format = formatFromPath(opts.Out)
			}
			if err := opts.validate(); err != nil {
				return err
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return generateRunner(cmd.Context(), cmd.OutOrStdout(), cfg, log, &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Manifest, "manifest", "m", "", "Route manifest (YAML or JSON)")
	flags.StringVarP(&opts.Out, "out", "o", "", "Output file (stdout when omitted)")
	flags.StringVar(&opts.Format, "format", "", "Output format: json or yaml (derived from --out when omitted)")
	flags.BoolVar(&opts.Validate, "validate", false, "Validate the generated document before writing it")

	return cmd
}

func (o *GenerateOptions) validate() error {
	if strings.TrimSpace(o.Manifest) == "" {
		return newUsageError("generate: --manifest is required")
	}
	switch o.Format {
	case "json", "yaml":
		return nil
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --format %q (allowed: json, yaml)", o.Format))
	}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func runGenerate(ctx context.Context, stdout io.Writer, cfg *Config, log *zap.Logger, opts *GenerateOptions) error {
	routes, err := manifest.Load(opts.Manifest)
	if err != nil {
		return err
	}

	doc, err := cfg.newSpec(log).Build(routes)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	data, err := encode(doc, opts.Format)
	if err != nil {
		return err
	}

	if opts.Validate {
		if err := validateDocument(ctx, data); err != nil {
			return fmt.Errorf("generate: %w", err)
		}
	}

	if opts.Out == "" {
		_, err = stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("document written",
		zap.String("path", opts.Out),
		zap.Int("routes", len(routes)),
		zap.Int("paths", len(doc.Paths)),
	)
	return nil
}

func encode(doc *openapi.Document, format string) ([]byte, error) {
	if format == "yaml" {
		return doc.YAML()
	}
	return doc.JSON()
}
