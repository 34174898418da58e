package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"fundledger/application"
	"fundledger/domain/services"
	"fundledger/httpapi"
	"fundledger/infrastructure"
	"fundledger/infrastructure/observability"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the ledger HTTP API" }
func (*serveCmd) Usage() string {
	return `fundledger serve [-addr <host:port>]

  Serves the wire confirmation and fund totals API until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to HTTP_ADDR.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.run(ctx); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context) error {
	cfg := loadConfig()
	log.WithField("environment", cfg.Environment).Info("Starting fundledger...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	}()

	rt, err := newRuntime(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	validator := services.NewConfirmationValidator(services.ConfirmationLimits{
		MaxAmountReceived:       cfg.MaxAmountReceived,
		FutureDateToleranceDays: cfg.FutureDateToleranceDays,
	}, nil)

	reporter := infrastructure.NewLogErrorReporter()
	confirmations := application.NewConfirmationHandler(rt.uowFactory, validator, reporter, nil)
	totals := application.NewTotalsHandler(rt.uowFactory, reporter, nil)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := httpapi.NewRouter(httpapi.NewHandlers(confirmations, totals, rt.db), httpapi.RouterConfig{
		JWTSecret: []byte(cfg.JWTSecret),
		Registry:  registry,
	})

	addr := c.addr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	server := httpapi.NewServer(addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Shutdown completed")
	return nil
}
