package cli

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/synapse/adapter/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the classifier route and the authenticated /api/v1 routes.

Bearer tokens come from API_TOKENS ("token:user-uuid,..."). The outbox
processor runs in the same process unless OUTBOX_PROCESSOR_ENABLED=false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		c := a.Container

		tokens, err := c.Config.APITokenMap()
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			Logger().Warn("API_TOKENS is empty; every /api/v1 request will be rejected")
		}

		routerCfg := api.RouterConfig{
			Classifier: c.Classifier,
			Container:  c,
			Tokens:     tokens,
			Health:     c.Health,
			Metrics:    c.Metrics,
			Logger:     Logger(),
		}
		if c.Prometheus != nil {
			routerCfg.MetricsHandler = c.Prometheus.Handler()
		}

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = serveAddr
		if serverCfg.Addr == "" {
			serverCfg.Addr = c.Config.APIAddr
		}
		server := api.NewServer(serverCfg, api.NewRouter(routerCfg), Logger())

		g, ctx := errgroup.WithContext(cmd.Context())
		if c.Config.OutboxProcessorEnabled {
			if err := c.OutboxProcessor.Start(ctx); err != nil {
				return err
			}
		}
		g.Go(server.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default API_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
