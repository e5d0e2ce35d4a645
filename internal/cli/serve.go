package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/internal/server"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/source"
	"github.com/matzehuels/flowlane/pkg/source/mongo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		mongoURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the export pipeline over HTTP:

  POST /v1/export                     snapshot in, BPMN out
  POST /v1/layout                     snapshot in, layout JSON out
  GET  /v1/tables                     tables of the configured MongoDB source
  GET  /v1/tables/{tableID}/export    BPMN of a stored table
  GET  /metrics                       Prometheus metrics
  GET  /healthz                       liveness`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if mongoURI != "" {
				cfg.Source.MongoURI = mongoURI
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			svc, err := c.newService(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer svc.Close()

			var src source.Source
			if cfg.Source.MongoURI != "" {
				ms, err := mongo.Connect(ctx, cfg.Source.MongoURI, cfg.Source.Database, cfg.Source.Collection)
				if err != nil {
					return err
				}
				defer ms.Close()
				src = ms
			}

			metrics := server.NewMetrics()
			observability.SetPipelineHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			printKeyValue("Address", cfg.Server.Addr)
			printKeyValue("Engine", cfg.Layout.Engine)
			printKeyValue("Cache", cacheLabel(cfg.Cache.Backend, noCache))
			if src != nil {
				printKeyValue("Source", cfg.Source.Database+"."+cfg.Source.Collection)
			}

			s := server.New(svc, src, server.Options{
				Addr:           cfg.Server.Addr,
				Pipeline:       cfg.PipelineOptions(),
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				Logger:         c.Logger,
				Metrics:        metrics,
			})
			return s.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "serve stored tables from MongoDB")
	return cmd
}

func cacheLabel(backend string, noCache bool) string {
	if noCache {
		return "none"
	}
	return backend
}
