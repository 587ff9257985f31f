/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination shell_mocks_test.go -package shell_test -source=shell.go -mock_names KeyStore=MockKeyStore,Store=MockStore

package shell

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/observability/metrics"
	"github.com/trustbloc/wallet/pkg/observability/metrics/noop"
	"github.com/trustbloc/wallet/pkg/view"
)

var logger = log.New("wallet-shell")

const defaultHTTPTimeout = 30 * time.Second

// KeyStore returns the private key with the given id and purpose, creating it on first use.
type KeyStore interface {
	Get(ctx context.Context, id, purpose string) ([]byte, error)
}

// Store persists catalogs of opaque entries.
type Store interface {
	List(ctx context.Context, catalog string) ([][]byte, error)
	Save(ctx context.Context, catalog, id string, value []byte) error
	Delete(ctx context.Context, catalog, id string) error
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Wallet owns the application model and executes the commands the controller asks for. All
// access to the model goes through Dispatch and View.
type Wallet struct {
	mu    sync.Mutex
	model model.Model

	httpClient httpClient
	keyStore   KeyStore
	store      Store
	metrics    metrics.Metrics
	tracer     trace.Tracer
	onRender   func(view.ViewModel)
	cfg        controller.Config
}

// New returns a wallet on the credential list. A key store and a store are required for any
// flow to complete.
func New(opts ...Opt) *Wallet {
	w := &Wallet{
		model:   model.New(),
		metrics: &noop.NoMetrics{},
		tracer:  trace.NewNoopTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.httpClient == nil {
		w.httpClient = &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: w.metrics.InstrumentHTTPTransport(http.DefaultTransport),
		}
	}

	return w
}

// Dispatch applies the event and runs the resulting commands. It returns once every command
// (and every command raised by their results) has completed.
func (w *Wallet) Dispatch(ctx context.Context, event controller.Event) view.ViewModel {
	w.process(ctx, event)

	return w.View()
}

// View returns the projection of the current model.
func (w *Wallet) View() view.ViewModel {
	return view.From(w.Model())
}

// Model returns the current model.
func (w *Wallet) Model() model.Model {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.model
}

func (w *Wallet) process(ctx context.Context, event controller.Event) {
	if event == nil {
		return
	}

	name := eventName(event)

	w.mu.Lock()
	prev := w.model
	next, cmd := controller.Update(event, prev, w.cfg)
	w.model = next
	w.mu.Unlock()

	w.metrics.EventProcessed(name)

	logger.Debugc(ctx, "Event processed", logfields.WithEvent(name),
		logfields.WithAspect(string(next.ActiveView)))

	w.record(ctx, name, event, prev, next)
	w.execute(ctx, cmd)
}

func (w *Wallet) record(ctx context.Context, name string, event controller.Event, prev, next model.Model) {
	switch {
	case next.ActiveView == model.AspectError && prev.ActiveView != model.AspectError:
		w.metrics.FlowFailed(name)

		if s, ok := next.State.(model.ErrorState); ok {
			logger.Warnc(ctx, "Flow failed", logfields.WithEvent(name),
				logfields.WithAdditionalMessage(s.Message))
		}
	case next.ActiveView == model.AspectPresentationSuccess && prev.ActiveView != model.AspectPresentationSuccess:
		w.metrics.FlowCompleted(metrics.FlowPresentation)
	default:
		if e, ok := event.(controller.IssuanceStored); ok && e.Err == nil {
			w.metrics.FlowCompleted(metrics.FlowIssuance)
		}
	}
}

func eventName(event controller.Event) string {
	return reflect.TypeOf(event).Name()
}
