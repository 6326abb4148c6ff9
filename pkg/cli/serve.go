package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotelops/intervention/pkg/cli/config"
	httpctrl "github.com/hotelops/intervention/pkg/controller/http"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdServe() *cli.Command {
	var addr string
	var keepAlive time.Duration
	var repoCfg config.Repository
	var estCfg config.Establishment
	var brokerCfg config.Broker

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("INTERVENTION_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "event-keep-alive",
			Usage:       "Interval of keep-alive frames on the event stream",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("INTERVENTION_EVENT_KEEP_ALIVE"),
			Destination: &keepAlive,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, estCfg.Flags()...)
	flags = append(flags, brokerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, &repoCfg, &estCfg, &brokerCfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			logging.Default().Info("Establishment catalog loaded",
				"establishments", len(rt.registry.List()),
				"broker", &brokerCfg)

			handler := httpctrl.New(rt.uc,
				httpctrl.WithEstablishments(rt.registry),
				httpctrl.WithKeepAlive(keepAlive),
			)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			// Event streams end with ctx so Shutdown does not wait on them
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
