/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package noop

import (
	"net/http"
	"time"

	"github.com/trustbloc/wallet/pkg/observability/metrics"
)

// NoMetrics provides default no operation implementation for the NoMetrics interface.
type NoMetrics struct{}

// GetMetrics returns metrics implementation.
func GetMetrics() metrics.Metrics {
	return &NoMetrics{}
}

func (n *NoMetrics) EventProcessed(_ string)               {}
func (n *NoMetrics) FlowFailed(_ string)                   {}
func (n *NoMetrics) FlowCompleted(_ string)                {}
func (n *NoMetrics) CommandTime(_ string, _ time.Duration) {}

// InstrumentHTTPTransport returns the transport unchanged.
func (n *NoMetrics) InstrumentHTTPTransport(transport http.RoundTripper) http.RoundTripper {
	return transport
}
