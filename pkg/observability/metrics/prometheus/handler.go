/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is the path the metrics server serves the wallet metrics on.
const MetricsPath = "/metrics"

const readHeaderTimeout = 5 * time.Second

// NewServer returns a server exposing the wallet metrics on addr. It is started by the provider.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Handler serves the default gatherer, in OpenMetrics format when the scraper asks for it.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
