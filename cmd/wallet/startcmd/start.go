/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"

	"github.com/trustbloc/wallet/cmd/common"
	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/observability/health/healthutil"
	"github.com/trustbloc/wallet/pkg/observability/metrics"
	"github.com/trustbloc/wallet/pkg/observability/metrics/noop"
	"github.com/trustbloc/wallet/pkg/observability/metrics/prometheus"
	"github.com/trustbloc/wallet/pkg/observability/tracing"
	"github.com/trustbloc/wallet/pkg/restapi/v1/wallet"
	"github.com/trustbloc/wallet/pkg/shell"
)

var logger = log.New("wallet-start")

const (
	healthCheckEndpoint = "/healthcheck"
	readHeaderTimeout   = 5 * time.Second
)

type server interface {
	ListenAndServe(host string, router http.Handler) error
}

// HTTPServer represents an actual HTTP server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler) error {
	srv := &http.Server{
		Addr:              host,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv.ListenAndServe()
}

// GetStartCmd returns the Cobra start command.
func GetStartCmd() *cobra.Command {
	return getStartCmd(&HTTPServer{})
}

func getStartCmd(srv server) *cobra.Command {
	startCmd := createStartCmd(srv)

	createFlags(startCmd)

	return startCmd
}

func createStartCmd(srv server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start wallet",
		Long:  "Start the wallet REST host serving wallet events and views",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := getStartupParameters(cmd)
			if err != nil {
				return fmt.Errorf("failed to get startup parameters: %w", err)
			}

			return startWallet(cmd.Context(), params, srv)
		},
	}
}

func startWallet(ctx context.Context, params *startupParameters, srv server) error {
	if ctx == nil {
		ctx = context.Background()
	}

	common.SetLogLevel(logger, params.wallet.LogLevel)

	shutdownTracer, tracer, err := tracing.Initialize(params.wallet.Tracing.Exporter, params.wallet.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}

	defer shutdownTracer()

	metricsProvider, err := createMetricsProvider(params.metricsHostURL)
	if err != nil {
		return err
	}

	defer func() {
		if destroyErr := metricsProvider.Destroy(); destroyErr != nil {
			logger.Warn("Failed to stop metrics provider", log.WithError(destroyErr))
		}
	}()

	store, err := common.InitStore(params.wallet.DB, logger, common.WithTracerProvider(otel.GetTracerProvider()))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Failed to close wallet store", log.WithError(closeErr))
		}
	}()

	w, err := common.NewWallet(params.wallet, store, metricsProvider.Metrics(), shell.WithTracer(tracer))
	if err != nil {
		return err
	}

	w.Dispatch(ctx, controller.Ready{})

	e := buildEcho(params, w, store)

	logger.Info("Starting wallet on host", log.WithURL(params.hostURL),
		logfields.WithAspect(string(w.View().ActiveView)))

	return srv.ListenAndServe(params.hostURL, e)
}

func buildEcho(params *startupParameters, w *shell.Wallet, store *common.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())

	if params.wallet.Tracing.Exporter != tracing.None {
		e.Use(otelecho.Middleware(params.wallet.Tracing.ServiceName))
	}

	e.GET(healthCheckEndpoint, echo.WrapHandler(healthutil.NewHandler(store.HealthChecks()...)))

	ready := newReadinessController(e)

	wallet.NewController(e, w)

	ready.Ready(true)

	return e
}

type metricsProvider interface {
	Metrics() metrics.Metrics
	Destroy() error
}

type noopProvider struct{}

func (noopProvider) Metrics() metrics.Metrics { return noop.GetMetrics() }
func (noopProvider) Destroy() error           { return nil }

func createMetricsProvider(hostURL string) (metricsProvider, error) {
	if hostURL == "" {
		return noopProvider{}, nil
	}

	provider := prometheus.NewPrometheusProvider(prometheus.NewServer(hostURL))

	if err := provider.Create(); err != nil {
		return nil, fmt.Errorf("create metrics provider: %w", err)
	}

	return provider, nil
}
