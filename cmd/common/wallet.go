/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"
	tlsutils "github.com/trustbloc/cmdutil-go/pkg/utils/tls"

	"github.com/trustbloc/wallet/pkg/kms/keystore"
	"github.com/trustbloc/wallet/pkg/observability/metrics"
	"github.com/trustbloc/wallet/pkg/observability/metrics/noop"
	"github.com/trustbloc/wallet/pkg/observability/tracing"
	"github.com/trustbloc/wallet/pkg/shell"
	"github.com/trustbloc/wallet/pkg/storage"
)

const (
	commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

	clientIDFlagName  = "client-id"
	clientIDEnvKey    = "WALLET_CLIENT_ID"
	clientIDFlagUsage = "OAuth client id presented to issuers. " + commonEnvVarUsageText + clientIDEnvKey

	subjectIDFlagName  = "subject-id"
	subjectIDEnvKey    = "WALLET_SUBJECT_ID"
	subjectIDFlagUsage = "Subject identifier of the holder. " + commonEnvVarUsageText + subjectIDEnvKey

	httpTimeoutFlagName  = "http-timeout"
	httpTimeoutEnvKey    = "WALLET_HTTP_TIMEOUT"
	httpTimeoutFlagUsage = "Timeout of requests to issuers and verifiers, for example 30s. Default: 30s. " +
		commonEnvVarUsageText + httpTimeoutEnvKey

	tlsSystemCertPoolFlagName  = "tls-systemcertpool"
	tlsSystemCertPoolEnvKey    = "WALLET_TLS_SYSTEMCERTPOOL"
	tlsSystemCertPoolFlagUsage = "Use system certificate pool." +
		" Possible values [true] [false]. Defaults to true if not set. " +
		commonEnvVarUsageText + tlsSystemCertPoolEnvKey

	tlsCACertsFlagName  = "tls-cacerts"
	tlsCACertsEnvKey    = "WALLET_TLS_CACERTS"
	tlsCACertsFlagUsage = "Comma-Separated list of ca certs path. " + commonEnvVarUsageText + tlsCACertsEnvKey

	tracingProviderFlagName  = "tracing-provider"
	tracingProviderEnvKey    = "WALLET_TRACING_PROVIDER"
	tracingProviderFlagUsage = "The tracing provider (for example, JAEGER or STDOUT). " +
		commonEnvVarUsageText + tracingProviderEnvKey

	tracingServiceNameFlagName  = "tracing-service-name"
	tracingServiceNameEnvKey    = "WALLET_TRACING_SERVICE_NAME"
	tracingServiceNameFlagUsage = "The name of the tracing service. Default: wallet. " +
		commonEnvVarUsageText + tracingServiceNameEnvKey

	defaultHTTPTimeout        = 30 * time.Second
	defaultTracingServiceName = "wallet"
)

// WalletParameters configures the wallet runtime.
type WalletParameters struct {
	ClientID          string
	SubjectID         string
	HTTPTimeout       time.Duration
	TLSSystemCertPool bool
	TLSCACerts        []string
	DB                *DBParameters
	LogLevel          string
	Tracing           TracingParameters
}

// TracingParameters select the span exporter.
type TracingParameters struct {
	Exporter    tracing.SpanExporterType
	ServiceName string
}

// WalletFlags registers the flags read by WalletParams.
func WalletFlags(cmd *cobra.Command) {
	Flags(cmd)

	cmd.Flags().StringP(clientIDFlagName, "", "", clientIDFlagUsage)
	cmd.Flags().StringP(subjectIDFlagName, "", "", subjectIDFlagUsage)
	cmd.Flags().StringP(httpTimeoutFlagName, "", "", httpTimeoutFlagUsage)
	cmd.Flags().StringP(tlsSystemCertPoolFlagName, "", "", tlsSystemCertPoolFlagUsage)
	cmd.Flags().StringArrayP(tlsCACertsFlagName, "", []string{}, tlsCACertsFlagUsage)
	cmd.Flags().StringP(LogLevelFlagName, LogLevelFlagShorthand, "", LogLevelPrefixFlagUsage)
	cmd.Flags().StringP(tracingProviderFlagName, "", "", tracingProviderFlagUsage)
	cmd.Flags().StringP(tracingServiceNameFlagName, "", "", tracingServiceNameFlagUsage)
}

// WalletParams fetches the wallet parameters configured for this command.
func WalletParams(cmd *cobra.Command) (*WalletParameters, error) {
	db, err := DBParams(cmd)
	if err != nil {
		return nil, err
	}

	params := &WalletParameters{
		ClientID:          cmdutils.GetUserSetOptionalVarFromString(cmd, clientIDFlagName, clientIDEnvKey),
		SubjectID:         cmdutils.GetUserSetOptionalVarFromString(cmd, subjectIDFlagName, subjectIDEnvKey),
		HTTPTimeout:       defaultHTTPTimeout,
		TLSSystemCertPool: true,
		TLSCACerts:        cmdutils.GetUserSetOptionalVarFromArrayString(cmd, tlsCACertsFlagName, tlsCACertsEnvKey),
		DB:                db,
		LogLevel:          cmdutils.GetUserSetOptionalVarFromString(cmd, LogLevelFlagName, LogLevelEnvKey),
		Tracing: TracingParameters{
			Exporter:    cmdutils.GetUserSetOptionalVarFromString(cmd, tracingProviderFlagName, tracingProviderEnvKey),
			ServiceName: cmdutils.GetUserSetOptionalVarFromString(cmd, tracingServiceNameFlagName, tracingServiceNameEnvKey),
		},
	}

	if !tracing.IsExporterSupported(params.Tracing.Exporter) {
		return nil, fmt.Errorf("unsupported tracing provider: %s", params.Tracing.Exporter)
	}

	if params.Tracing.ServiceName == "" {
		params.Tracing.ServiceName = defaultTracingServiceName
	}

	if timeout := cmdutils.GetUserSetOptionalVarFromString(cmd, httpTimeoutFlagName, httpTimeoutEnvKey); timeout != "" {
		params.HTTPTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", httpTimeoutFlagName, err)
		}
	}

	systemCertPool := cmdutils.GetUserSetOptionalVarFromString(cmd, tlsSystemCertPoolFlagName, tlsSystemCertPoolEnvKey)
	if systemCertPool != "" {
		params.TLSSystemCertPool, err = strconv.ParseBool(systemCertPool)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", tlsSystemCertPoolFlagName, err)
		}
	}

	return params, nil
}

// NewWallet builds a wallet over the store. Holder keys live in the store's key catalog.
func NewWallet(params *WalletParameters, store storage.Store, m metrics.Metrics, opts ...shell.Opt) (*shell.Wallet, error) {
	rootCAs, err := tlsutils.GetCertPool(params.TLSSystemCertPool, params.TLSCACerts)
	if err != nil {
		return nil, fmt.Errorf("load ca certs: %w", err)
	}

	if m == nil {
		m = noop.GetMetrics()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.TLSClientConfig = &tls.Config{RootCAs: rootCAs, MinVersion: tls.VersionTLS12}

	httpClient := &http.Client{
		Timeout:   params.HTTPTimeout,
		Transport: m.InstrumentHTTPTransport(transport),
	}

	return shell.New(append([]shell.Opt{
		shell.WithHTTPClient(httpClient),
		shell.WithStore(store),
		shell.WithKeyStore(keystore.New(store)),
		shell.WithMetrics(m),
		shell.WithClientID(params.ClientID),
		shell.WithSubjectID(params.SubjectID),
	}, opts...)...), nil
}
