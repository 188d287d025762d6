package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formguard/internal/config"
	"github.com/goliatone/go-formguard/internal/formsource"
	"github.com/goliatone/go-formguard/internal/server"
	"github.com/goliatone/go-formguard/pkg/env"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, dir, openapi string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve public forms and replay submissions through the gate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dir != "" {
				cfg.Forms.Dir = dir
			}
			if openapi != "" {
				cfg.Forms.OpenAPI = openapi
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			renderer, err := newRenderer(cfg)
			if err != nil {
				return err
			}
			catalog, err := buildCatalog(ctx, cfg, renderer)
			if err != nil {
				return err
			}

			validator := newValidator(cfg)
			srv, err := server.New(server.Options{
				Catalog:         catalog,
				Renderer:        renderer,
				Controller:      controllerOptions(cfg, validator, logger),
				Decorators:      []env.Decorator{env.QRDecorator{}},
				Validator:       validator,
				Logger:          logger,
				IndexTitle:      cfg.Forms.Title,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of static .html forms (overrides forms.dir)")
	cmd.Flags().StringVar(&openapi, "openapi", "", "OpenAPI document to generate forms from (overrides forms.openapi)")
	return cmd
}

func newRenderer(cfg *config.Config) (*formsource.Renderer, error) {
	return formsource.NewRenderer(
		formsource.WithFormClass(cfg.Gate.FormClass),
		formsource.WithLang(cfg.Validation.Locale),
	)
}

func buildCatalog(ctx context.Context, cfg *config.Config, renderer *formsource.Renderer) (*formsource.Catalog, error) {
	catalog := formsource.NewCatalog()
	if cfg.Forms.Dir != "" {
		if _, err := catalog.LoadDir(cfg.Forms.Dir); err != nil {
			return nil, err
		}
	}
	if cfg.Forms.OpenAPI != "" {
		if _, err := catalog.LoadOpenAPI(ctx, cfg.Forms.OpenAPI, renderer); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
