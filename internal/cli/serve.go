package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/internal/server"
	"github.com/matzehuels/lineage/pkg/observability"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
		noCache bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [snapshot.json]",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

GET routes render the configured snapshot source (the file argument, --url,
--mongo-uri or the config file). POST routes render the snapshot in the
request body and work without a source. Prometheus metrics are served at
/metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := c.resolveProvider(ctx, args, src)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, p, noCache)
			if err != nil {
				return err
			}
			defer runner.Close(context.WithoutCancel(ctx))

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			observability.NewPrometheusHooks(reg).Install()

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := server.New(server.Options{
				Runner:         runner,
				Logger:         c.Logger,
				Gatherer:       reg,
				Defaults:       c.defaultOptions(),
				AllowedOrigins: origins,
			})

			if p == nil {
				printWarning("No snapshot source configured; only POST routes will work")
			} else {
				printInfo("Serving snapshots from %s", p.Name())
			}
			printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

// displayAddr makes a bare ":port" address clickable.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
