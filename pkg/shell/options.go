/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package shell

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/wallet/pkg/observability/metrics"
	"github.com/trustbloc/wallet/pkg/view"
)

// Opt configures a Wallet.
type Opt func(w *Wallet)

// WithHTTPClient sets the client used to reach issuers and verifiers.
func WithHTTPClient(client httpClient) Opt {
	return func(w *Wallet) {
		w.httpClient = client
	}
}

// WithKeyStore sets the holder key store.
func WithKeyStore(keyStore KeyStore) Opt {
	return func(w *Wallet) {
		w.keyStore = keyStore
	}
}

// WithStore sets the credential store.
func WithStore(store Store) Opt {
	return func(w *Wallet) {
		w.store = store
	}
}

// WithMetrics sets the metrics. The default HTTP client reports its requests to them.
func WithMetrics(m metrics.Metrics) Opt {
	return func(w *Wallet) {
		w.metrics = m
	}
}

// WithTracer sets the tracer used for command spans.
func WithTracer(tracer trace.Tracer) Opt {
	return func(w *Wallet) {
		w.tracer = tracer
	}
}

// WithClientID sets the OAuth client id presented to issuers.
func WithClientID(clientID string) Opt {
	return func(w *Wallet) {
		w.cfg.ClientID = clientID
	}
}

// WithSubjectID sets the holder's subject identifier.
func WithSubjectID(subjectID string) Opt {
	return func(w *Wallet) {
		w.cfg.SubjectID = subjectID
	}
}

// WithClock sets the clock used for token lifetimes.
func WithClock(now func() time.Time) Opt {
	return func(w *Wallet) {
		w.cfg.Now = now
	}
}

// WithRenderer sets a callback invoked with the current view every time the controller asks
// for a render.
func WithRenderer(render func(view.ViewModel)) Opt {
	return func(w *Wallet) {
		w.onRender = render
	}
}
