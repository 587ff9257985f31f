/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/observability/metrics"
)

var logger = metrics.Logger

var (
	createOnce sync.Once       //nolint:gochecknoglobals
	instance   metrics.Metrics //nolint:gochecknoglobals
)

const (
	labelEvent   = "event"
	labelFlow    = "flow"
	labelCommand = "command"
	labelCode    = "code"
	labelMethod  = "method"
)

type promProvider struct {
	httpServer *http.Server
}

// NewPrometheusProvider creates new instance of Prometheus Metrics Provider. Metrics are served by
// httpServer when it is not nil.
func NewPrometheusProvider(httpServer *http.Server) metrics.Provider {
	return &promProvider{httpServer: httpServer}
}

// Create creates/initializes the prometheus metrics provider.
func (pp *promProvider) Create() error {
	if pp.httpServer == nil {
		return nil
	}

	go func() {
		if err := pp.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics HTTP server stopped", log.WithError(err))
		}
	}()

	return nil
}

// Metrics returns supported metrics.
func (pp *promProvider) Metrics() metrics.Metrics {
	return GetMetrics()
}

// Destroy destroys the prometheus metrics provider.
func (pp *promProvider) Destroy() error {
	if pp.httpServer != nil {
		return pp.httpServer.Shutdown(context.Background())
	}

	return nil
}

// GetMetrics returns metrics implementation.
func GetMetrics() metrics.Metrics {
	createOnce.Do(func() {
		instance = NewMetrics()
	})

	return instance
}

// PromMetrics manages the metrics for the wallet.
type PromMetrics struct {
	events         *prometheus.CounterVec
	errors         *prometheus.CounterVec
	flowsCompleted *prometheus.CounterVec
	commandTime    *prometheus.HistogramVec
	httpClientTime *prometheus.HistogramVec
}

// NewMetrics creates instance of prometheus metrics.
func NewMetrics() metrics.Metrics {
	pm := &PromMetrics{
		events:         newEvents(),
		errors:         newErrors(),
		flowsCompleted: newFlowsCompleted(),
		commandTime:    newCommandTime(),
		httpClientTime: newHTTPClientTime(),
	}

	registerMetrics(pm)

	return pm
}

// EventProcessed counts an event applied to the model.
func (pm *PromMetrics) EventProcessed(event string) {
	pm.events.WithLabelValues(event).Inc()
}

// FlowFailed counts an event that moved the model to the error aspect.
func (pm *PromMetrics) FlowFailed(event string) {
	pm.errors.WithLabelValues(event).Inc()

	logger.Debug("flow failed", logfields.WithEvent(event))
}

// FlowCompleted counts a completed issuance or presentation.
func (pm *PromMetrics) FlowCompleted(flow string) {
	pm.flowsCompleted.WithLabelValues(flow).Inc()
}

// CommandTime records the time it took the shell to execute a command.
func (pm *PromMetrics) CommandTime(command string, value time.Duration) {
	pm.commandTime.WithLabelValues(command).Observe(value.Seconds())

	logger.Debug("command time", log.WithDuration(value))
}

// InstrumentHTTPTransport records the duration of outbound requests by status code and method.
func (pm *PromMetrics) InstrumentHTTPTransport(transport http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperDuration(pm.httpClientTime, transport)
}

func registerMetrics(pm *PromMetrics) {
	prometheus.MustRegister(
		pm.events, pm.errors, pm.flowsCompleted, pm.commandTime, pm.httpClientTime,
	)
}

func newCounter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func newHistogram(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func newEvents() *prometheus.CounterVec {
	return newCounter(
		metrics.Controller, metrics.EventsMetric,
		"The number of events applied to the wallet model.",
		labelEvent,
	)
}

func newErrors() *prometheus.CounterVec {
	return newCounter(
		metrics.Controller, metrics.ErrorsMetric,
		"The number of events that ended a flow with an error.",
		labelEvent,
	)
}

func newFlowsCompleted() *prometheus.CounterVec {
	return newCounter(
		metrics.Controller, metrics.FlowsCompleteMetric,
		"The number of issuance and presentation flows completed.",
		labelFlow,
	)
}

func newCommandTime() *prometheus.HistogramVec {
	return newHistogram(
		metrics.Command, metrics.CommandTimeMetric,
		"The time (in seconds) it takes to execute a command.",
		labelCommand,
	)
}

func newHTTPClientTime() *prometheus.HistogramVec {
	return newHistogram(
		metrics.HTTPClient, metrics.HTTPClientRequestMetric,
		"The time (in seconds) it takes an issuer or verifier to answer a request.",
		labelCode, labelMethod,
	)
}
