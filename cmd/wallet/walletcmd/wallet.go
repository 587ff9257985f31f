/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package walletcmd holds the one-shot wallet commands: receiving an offered credential,
// presenting credentials to a verifier and managing the stored credentials.
package walletcmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel"

	"github.com/trustbloc/wallet/cmd/common"
	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/controller"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/observability/tracing"
	"github.com/trustbloc/wallet/pkg/shell"
	"github.com/trustbloc/wallet/pkg/view"
)

var logger = log.New("wallet-cli")

const commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

type session struct {
	wallet         *shell.Wallet
	store          *common.Store
	shutdownTracer func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	params, err := common.WalletParams(cmd)
	if err != nil {
		return nil, err
	}

	common.SetLogLevel(logger, params.LogLevel)

	shutdownTracer, tracer, err := tracing.Initialize(params.Tracing.Exporter, params.Tracing.ServiceName,
		tracing.WithWriter(cmd.ErrOrStderr()), tracing.WithSyncExport())
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	s := &session{shutdownTracer: shutdownTracer}

	s.store, err = common.InitStore(params.DB, logger, common.WithTracerProvider(otel.GetTracerProvider()))
	if err != nil {
		shutdownTracer()

		return nil, err
	}

	s.wallet, err = common.NewWallet(params, s.store, nil, shell.WithTracer(tracer))
	if err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		logger.Warn("Failed to close wallet store", log.WithError(err))
	}

	s.shutdownTracer()
}

// dispatch feeds the event to the wallet and fails when the wallet lands on the error view.
func (s *session) dispatch(ctx context.Context, event controller.Event) (view.ViewModel, error) {
	vm := s.wallet.Dispatch(ctx, event)

	logger.Debugc(ctx, "Event processed", logfields.WithAspect(string(vm.ActiveView)))

	if vm.ActiveView == model.AspectError {
		return vm, errors.New(vm.Error)
	}

	return vm, nil
}

func printView(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
