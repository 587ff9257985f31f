/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination controller_mocks_test.go -package wallet_test -source=controller.go -mock_names router=MockRouter,dispatcher=MockDispatcher

package wallet

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/view"
)

var logger = log.New("wallet-restapi")

const (
	eventsPath    = "/wallet/events"
	viewPath      = "/wallet/view"
	logLevelsPath = "/loglevels"
)

type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

type dispatcher interface {
	Dispatch(ctx context.Context, event controller.Event) view.ViewModel
	View() view.ViewModel
}

// EventRequest is a holder event raised over HTTP.
type EventRequest struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Controller exposes a wallet to a hosting UI.
type Controller struct {
	wallet dispatcher
}

// NewController registers the wallet routes.
func NewController(r router, wallet dispatcher) *Controller {
	c := &Controller{wallet: wallet}

	r.POST(eventsPath, func(ctx echo.Context) error {
		return c.PostEvent(ctx)
	})
	r.GET(viewPath, func(ctx echo.Context) error {
		return c.GetView(ctx)
	})
	r.POST(logLevelsPath, func(ctx echo.Context) error {
		return c.PostLogLevels(ctx)
	})

	return c
}

// PostEvent dispatches a holder event and returns the view once the resulting commands settle.
// (POST /wallet/events).
func (c *Controller) PostEvent(ctx echo.Context) error {
	var req EventRequest

	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid event: %s", err))
	}

	event, err := controller.ParseEvent(req.Type, req.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reqCtx := ctx.Request().Context()

	logger.Debugc(reqCtx, "Event received", logfields.WithEvent(req.Type))

	return ctx.JSON(http.StatusOK, c.wallet.Dispatch(reqCtx, event))
}

// GetView returns the current view.
// (GET /wallet/view).
func (c *Controller) GetView(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.wallet.View())
}

// PostLogLevels updates log levels.
// (POST /loglevels).
func (c *Controller) PostLogLevels(ctx echo.Context) error {
	b, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	spec := string(b)

	if err = log.SetSpec(spec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("failed to set log spec: %s", err))
	}

	logger.Info(fmt.Sprintf("log levels modified to: %s", spec))

	return ctx.NoContent(http.StatusOK)
}
