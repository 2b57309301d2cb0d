package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitalvas/oasgen/manifest"
	"github.com/vitalvas/oasgen/openapi"
)

// ServeOptions captures the inputs of the serve command.
type ServeOptions struct {
	Manifest string
	Addr     string
	BasePath string
	UI       string
}

var docsUIs = map[string]openapi.DocsUI{
	"swagger": openapi.DocsSwaggerUI,
	"rapidoc": openapi.DocsRapiDoc,
	"redoc":   openapi.DocsRedoc,
}

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document and interactive docs, regenerating on every request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.Manifest) == "" {
				return newUsageError("serve: --manifest is required")
			}
			ui, ok := docsUIs[strings.ToLower(opts.UI)]
			if !ok {
				return newUsageError(fmt.Sprintf("serve: unsupported --ui %q (allowed: swagger, rapidoc, redoc)", opts.UI))
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log, &opts, ui)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Manifest, "manifest", "m", "", "Route manifest (YAML or JSON)")
	flags.StringVar(&opts.Addr, "addr", ":8080", "Listen address")
	flags.StringVar(&opts.BasePath, "base-path", "/docs", "Base path of the docs endpoints")
	flags.StringVar(&opts.UI, "ui", "swagger", "Docs UI: swagger, rapidoc or redoc")

	return cmd
}

// docsMux registers the document endpoints for the manifest. The manifest
// is reloaded on every request.
func docsMux(cfg *Config, log *zap.Logger, opts *ServeOptions, ui openapi.DocsUI) *http.ServeMux {
	mux := http.NewServeMux()
	source := manifest.NewFileSource(opts.Manifest, log)
	cfg.newSpec(log).Handle(mux, opts.BasePath, source, &openapi.HandleConfig{
		UI:         ui,
		Regenerate: true,
	})
	return mux
}

func serve(ctx context.Context, cfg *Config, log *zap.Logger, opts *ServeOptions, ui openapi.DocsUI) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           withRequestID(log, withRecovery(log, docsMux(cfg, log, opts, ui))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving OpenAPI document",
			zap.String("addr", opts.Addr),
			zap.String("base_path", opts.BasePath),
			zap.String("manifest", opts.Manifest),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
