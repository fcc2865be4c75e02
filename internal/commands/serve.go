package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/grassjelly/internal/api"
)

func newServeCommand(o *rootOptions) *cobra.Command {
	var (
		addr       string
		production bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(cmd *cobra.Command, _ []string, e *env) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			opts, err := e.reportOptions()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router := api.NewRouter(api.Params{
				Tracker:        e.svc,
				Logger:         e.log,
				Formatter:      opts.Formatter,
				Location:       opts.Location,
				RateLimit:      e.cfg.Server.RateLimit,
				RequestTimeout: e.cfg.Server.WriteTimeout,
				Production:     production,
			})
			server := &http.Server{
				Handler:      router,
				ReadTimeout:  e.cfg.Server.ReadTimeout,
				WriteTimeout: e.cfg.Server.WriteTimeout,
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				e.log.Info("starting http server", "addr", ln.Addr().String(), "backend", e.cfg.Store.Backend)
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				e.log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			return g.Wait()
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().BoolVar(&production, "production", false, "redirect plain HTTP requests to HTTPS")
	return cmd
}
