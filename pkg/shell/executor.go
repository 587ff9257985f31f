/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/observability/tracing/attributeutil"
)

const maxResponseSize = 10 << 20

var (
	errNoKeyStore = errors.New("no key store configured")
	errNoStore    = errors.New("no credential store configured")
)

func (w *Wallet) execute(ctx context.Context, cmd controller.Command) {
	switch c := cmd.(type) {
	case nil, controller.None:
		return
	case controller.Render:
		if w.onRender != nil {
			w.onRender(w.View())
		}

		return
	case controller.Emit:
		w.process(ctx, c.Event)

		return
	case controller.Batch:
		var wg sync.WaitGroup

		for _, child := range c.Commands {
			wg.Add(1)

			go func(child controller.Command) {
				defer wg.Done()

				w.execute(ctx, child)
			}(child)
		}

		wg.Wait()

		return
	}

	name := commandName(cmd)
	start := time.Now()

	ctx, span := w.tracer.Start(ctx, "shell."+name)

	event := w.run(ctx, span, cmd)

	span.End()

	w.metrics.CommandTime(name, time.Since(start))

	w.process(ctx, event)
}

func (w *Wallet) run(ctx context.Context, span trace.Span, cmd controller.Command) controller.Event {
	switch c := cmd.(type) {
	case controller.HTTP:
		resp, err := w.doHTTP(ctx, span, c.Request)
		recordErr(span, err)

		return c.Then(resp, err)
	case controller.KeyStoreGet:
		span.SetAttributes(attribute.String("key_id", c.ID), attribute.String("purpose", c.Purpose))

		if w.keyStore == nil {
			return c.Then(nil, errNoKeyStore)
		}

		key, err := w.keyStore.Get(ctx, c.ID, c.Purpose)
		recordErr(span, err)

		return c.Then(key, err)
	case controller.StoreList:
		span.SetAttributes(attribute.String("catalog", c.Catalog))

		if w.store == nil {
			return c.Then(nil, errNoStore)
		}

		entries, err := w.store.List(ctx, c.Catalog)
		recordErr(span, err)

		span.SetAttributes(attribute.Int("entries", len(entries)))

		return c.Then(entries, err)
	case controller.StoreSave:
		span.SetAttributes(attribute.String("catalog", c.Catalog), attribute.String("id", c.ID))

		if w.store == nil {
			return c.Then(errNoStore)
		}

		err := w.store.Save(ctx, c.Catalog, c.ID, c.Value)
		recordErr(span, err)

		logger.Debugc(ctx, "Entry saved", logfields.WithCatalog(c.Catalog), logfields.WithCredentialID(c.ID))

		return c.Then(err)
	case controller.StoreDelete:
		span.SetAttributes(attribute.String("catalog", c.Catalog), attribute.String("id", c.ID))

		if w.store == nil {
			return c.Then(errNoStore)
		}

		err := w.store.Delete(ctx, c.Catalog, c.ID)
		recordErr(span, err)

		return c.Then(err)
	case controller.Task:
		span.SetAttributes(attribute.String("task", c.Name))

		return c.Run(ctx)
	default:
		logger.Errorc(ctx, "Unsupported command", logfields.WithCommand(fmt.Sprintf("%T", cmd)))

		return nil
	}
}

func (w *Wallet) doHTTP(ctx context.Context, span trace.Span, r controller.HTTPRequest) (controller.HTTPResponse, error) {
	span.SetAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.url", r.URL),
		attributeutil.Headers("http.request.headers", r.Header,
			attributeutil.WithRedacted(attributeutil.SensitiveHeaders...)),
	)

	if len(r.Body) > 0 {
		span.SetAttributes(bodyAttribute("http.request.body", r.Header.Get("Content-Type"), r.Body))
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return controller.HTTPResponse{}, fmt.Errorf("create request: %w", err)
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}

	start := time.Now()

	resp, err := w.httpClient.Do(req)
	if err != nil {
		logger.Errorc(ctx, "HTTP request failed", logfields.WithMethod(r.Method), log.WithURL(r.URL),
			log.WithError(err))

		return controller.HTTPResponse{}, err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Errorc(ctx, "Failed to close response body", log.WithError(closeErr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return controller.HTTPResponse{}, fmt.Errorf("read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetAttributes(bodyAttribute("http.response.body", resp.Header.Get("Content-Type"), body))
	}

	logger.Debugc(ctx, "HTTP request", logfields.WithMethod(r.Method), log.WithURL(r.URL),
		log.WithHTTPStatus(resp.StatusCode), log.WithDuration(time.Since(start)))

	return controller.HTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func bodyAttribute(key, contentType string, body []byte) attribute.KeyValue {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return attribute.Int(key+".size", len(body))
		}

		return attributeutil.FormParams(key, form, attributeutil.WithRedacted(attributeutil.SensitiveFormParams...))
	default:
		return attributeutil.JSONBytes(key, body, attributeutil.WithRedacted(attributeutil.SensitiveJSONPaths...))
	}
}

func recordErr(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func commandName(cmd controller.Command) string {
	switch cmd.(type) {
	case controller.HTTP:
		return "HTTP"
	case controller.KeyStoreGet:
		return "KeyStoreGet"
	case controller.StoreList:
		return "StoreList"
	case controller.StoreSave:
		return "StoreSave"
	case controller.StoreDelete:
		return "StoreDelete"
	case controller.Task:
		return "Task"
	default:
		return fmt.Sprintf("%T", cmd)
	}
}
