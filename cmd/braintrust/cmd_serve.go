package main

import (
	"strings"

	"braintrust/internal/exemplar"
	"braintrust/internal/render"
	councilhttp "braintrust/internal/transport/http/council"

	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, exemplarsDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve deliberations over HTTP",
		Long: `Starts an HTTP server exposing the council:

  GET  /api/personas
  POST /api/deliberations        {"question": "...", "personas": [...], "no_summary": false}
  GET  /api/deliberations        archived sessions (needs archive.path)
  GET  /api/deliberations/:id
  GET  /healthz

Exemplar files are re-read when they change on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := render.New(cmd.OutOrStdout(), nil, render.Options{Plain: true})
			if exemplarsDir != "" {
				root.exemplarsDir = exemplarsDir
			}
			rt, err := newRuntime(root, true)
			if err != nil {
				r.Failure("Configuration error", err)
				return errReported
			}
			defer rt.Close()

			cache, err := exemplar.NewCache(rt.exemplarDir())
			if err != nil {
				r.Failure("Error", err)
				return errReported
			}
			defer cache.Close()

			engine, err := rt.engine(cache)
			if err != nil {
				r.Failure("Error", err)
				return errReported
			}
			cfg := councilhttp.Config{
				Addr:     firstNonEmpty(addr, rt.cfg.App.HTTPAddr),
				Engine:   engine,
				Registry: rt.registry,
			}
			// Leave the interface nil rather than holding a nil *archive.Store.
			if store := rt.openArchive(); store != nil {
				cfg.Archive = store
			}
			srv, err := councilhttp.NewServer(cfg)
			if err != nil {
				r.Failure("Error", err)
				return errReported
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			r.Success("Listening on " + cfg.Addr)
			if err := srv.Start(ctx); err != nil {
				r.Failure("Error", err)
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: app.http_addr or :9992)")
	cmd.Flags().StringVar(&exemplarsDir, "exemplars-dir", "", "Directory containing persona exemplar JSON files")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
