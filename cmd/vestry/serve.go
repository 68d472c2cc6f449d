// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestry-labs/vestry/api"
	"github.com/vestry-labs/vestry/co"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/metrics"
)

var logger = log.WithContext("pkg", "main")

func serveAction(ctx *cli.Context, e *env) error {
	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	handler, closeSubs := api.New(e.x, e.logDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableOps:       ctx.Bool(enableOpsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
	})

	apiListener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return errors.Wrap(err, "listen API addr")
	}

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		return serveHTTP(gctx, &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}, apiListener)
	})
	g.Go(func() error {
		// shutdown leaves hijacked websocket connections open
		<-gctx.Done()
		closeSubs()
		return nil
	})
	logger.Info("API server started", "url", "http://"+apiListener.Addr().String()+"/", "head", e.repo.Head())

	if ctx.Bool(enableMetricsFlag.Name) {
		metricsListener, err := net.Listen("tcp", ctx.String(metricsAddrFlag.Name))
		if err != nil {
			stop()
			_ = g.Wait()
			return errors.Wrap(err, "listen metrics addr")
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		g.Go(func() error {
			return serveHTTP(gctx, &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}, metricsListener)
		})
		logger.Info("metrics server started", "url", "http://"+metricsListener.Addr().String()+"/metrics")
	}

	err = g.Wait()
	logger.Info("servers stopped")
	return err
}

// serveHTTP serves srv on ln until ctx is done.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener) error {
	var (
		goes co.Goes
		done = make(chan struct{})
	)
	goes.Go(func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		case <-done:
		}
	})

	err := srv.Serve(ln)
	close(done)
	goes.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
