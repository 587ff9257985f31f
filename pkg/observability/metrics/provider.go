/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"net/http"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
)

// Logger used by different metrics provider.
var Logger = log.New("metrics-provider")

// Constants used by different metrics provider.
const (
	// Namespace Organization namespace.
	Namespace = "wallet"

	// Controller event processing.
	Controller          = "controller"
	EventsMetric        = "events_total"
	ErrorsMetric        = "errors_total"
	FlowsCompleteMetric = "flows_completed_total"

	// Commands executed by the shell.
	Command           = "command"
	CommandTimeMetric = "command_seconds"

	// HTTP client requests.
	HTTPClient              = "http_client"
	HTTPClientRequestMetric = "request_seconds"
)

// Flows.
const (
	FlowIssuance     = "issuance"
	FlowPresentation = "presentation"
)

// Provider is an interface for metrics provider.
type Provider interface {
	// Create creates a metrics provider instance
	Create() error
	// Destroy destroys the metrics provider instance
	Destroy() error
	// Metrics providers metrics
	Metrics() Metrics
}

// Metrics is an interface for the metrics to be supported by the provider.
type Metrics interface {
	EventProcessed(event string)
	FlowFailed(event string)
	FlowCompleted(flow string)
	CommandTime(command string, value time.Duration)
	InstrumentHTTPTransport(transport http.RoundTripper) http.RoundTripper
}
