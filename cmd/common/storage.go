/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/wallet/internal/logfields"
	"github.com/trustbloc/wallet/pkg/observability/health/healthutil"
	mongocheck "github.com/trustbloc/wallet/pkg/observability/health/mongo"
	redischeck "github.com/trustbloc/wallet/pkg/observability/health/redis"
	"github.com/trustbloc/wallet/pkg/storage"
	"github.com/trustbloc/wallet/pkg/storage/ariesprovider"
	"github.com/trustbloc/wallet/pkg/storage/mongodb"
	mongodbstore "github.com/trustbloc/wallet/pkg/storage/mongodb/catalogstore"
	"github.com/trustbloc/wallet/pkg/storage/redis"
	redisstore "github.com/trustbloc/wallet/pkg/storage/redis/catalogstore"
)

const (
	// DatabaseURLFlagName is the database url.
	DatabaseURLFlagName = "database-url"
	// DatabaseURLFlagUsage describes the usage.
	DatabaseURLFlagUsage = "Database URL with credentials if required." +
		" Format must be <driver>:[//]<driver-specific-dsn>." +
		" Examples: 'mem://test', 'mongodb://mongodb.example.com:27017', 'redis://localhost:6379/0'." +
		" Supported drivers are [mem, mongodb, mongodb+srv, redis, rediss]. Defaults to mem://." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseURLEnvKey
	// DatabaseURLEnvKey is the database url.
	DatabaseURLEnvKey = "WALLET_DATABASE_URL"

	// DatabaseTimeoutFlagName is the database timeout.
	DatabaseTimeoutFlagName = "database-timeout"
	// DatabaseTimeoutFlagUsage describes the usage.
	DatabaseTimeoutFlagUsage = "Total time in seconds to wait until the datasource is available before giving up." +
		" Default: " + "30" + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseTimeoutEnvKey
	// DatabaseTimeoutEnvKey is the database timeout.
	DatabaseTimeoutEnvKey = "WALLET_DATABASE_TIMEOUT"

	// DatabasePrefixFlagName is the storage prefix.
	DatabasePrefixFlagName = "database-prefix"
	// DatabasePrefixEnvKey is the storage prefix.
	DatabasePrefixEnvKey = "WALLET_DATABASE_PREFIX"
	// DatabasePrefixFlagUsage describes the usage.
	DatabasePrefixFlagUsage = "An optional prefix to be used when creating and retrieving underlying databases. " +
		"Alternatively, this can be set with the following environment variable: " + DatabasePrefixEnvKey

	// DatabaseTimeoutDefault is the default storage timeout.
	DatabaseTimeoutDefault = 30

	defaultDatabaseURL  = "mem://"
	defaultDatabaseName = "wallet"
)

// DBParameters holds database configuration.
type DBParameters struct {
	URL     string
	Prefix  string
	Timeout uint64
}

// Store is a wallet store together with the connection backing it.
type Store struct {
	storage.Store

	checks []health.Check
	close  func() error
}

// HealthChecks returns the checks of the connection backing the store.
func (s *Store) HealthChecks() []health.Check {
	return s.checks
}

// Close releases the connection backing the store.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

type storeOpts struct {
	tracerProvider trace.TracerProvider
}

// StoreOpt configures InitStore.
type StoreOpt func(opts *storeOpts)

// WithTracerProvider instruments database clients with the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) StoreOpt {
	return func(opts *storeOpts) {
		opts.tracerProvider = tp
	}
}

type storeFunc func(dbURL, prefix string, opts *storeOpts) (*Store, error)

// nolint:gochecknoglobals
var supportedStores = map[string]storeFunc{
	"mem": func(_, _ string, _ *storeOpts) (*Store, error) { // nolint:unparam
		return &Store{Store: ariesprovider.New(mem.NewProvider())}, nil
	},
	"mongodb":     openMongoDB,
	"mongodb+srv": openMongoDB,
	"redis":       openRedis,
	"rediss":      openRedis,
}

func openMongoDB(dbURL, prefix string, opts *storeOpts) (*Store, error) {
	var clientOpts []mongodb.ClientOpt

	if opts.tracerProvider != nil {
		clientOpts = append(clientOpts, mongodb.WithTraceProvider(opts.tracerProvider))
	}

	client, err := mongodb.New(dbURL, prefix+defaultDatabaseName, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		Store:  mongodbstore.New(client),
		checks: []health.Check{healthutil.NewCheck("mongodb", mongocheck.New(client.API()))},
		close:  client.Close,
	}, nil
}

func openRedis(dbURL, prefix string, opts *storeOpts) (*Store, error) {
	var clientOpts []redis.ClientOpt

	if opts.tracerProvider != nil {
		clientOpts = append(clientOpts, redis.WithTraceProvider(opts.tracerProvider))
	}

	client, err := redis.NewFromURL(dbURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		Store:  redisstore.New(client, prefix),
		checks: []health.Check{healthutil.NewCheck("redis", redischeck.New(client.API()))},
		close:  client.Close,
	}, nil
}

// Flags registers common command flags.
func Flags(cmd *cobra.Command) {
	cmd.Flags().StringP(DatabaseURLFlagName, "", "", DatabaseURLFlagUsage)
	cmd.Flags().StringP(DatabasePrefixFlagName, "", "", DatabasePrefixFlagUsage)
	cmd.Flags().StringP(DatabaseTimeoutFlagName, "", "", DatabaseTimeoutFlagUsage)
}

// DBParams fetches the DB parameters configured for this command.
func DBParams(cmd *cobra.Command) (*DBParameters, error) {
	var err error

	params := &DBParameters{}

	params.URL, err = cmdutils.GetUserSetVarFromString(cmd, DatabaseURLFlagName, DatabaseURLEnvKey, true)
	if err != nil {
		return nil, fmt.Errorf("failed to configure dbURL: %w", err)
	}

	if params.URL == "" {
		params.URL = defaultDatabaseURL
	}

	params.Prefix, err = cmdutils.GetUserSetVarFromString(cmd, DatabasePrefixFlagName, DatabasePrefixEnvKey, true)
	if err != nil {
		return nil, fmt.Errorf("failed to configure dbPrefix: %w", err)
	}

	timeout, err := cmdutils.GetUserSetVarFromString(cmd, DatabaseTimeoutFlagName, DatabaseTimeoutEnvKey, true)
	if err != nil {
		return nil, fmt.Errorf("failed to configure dbTimeout: %w", err)
	}

	if timeout == "" {
		timeout = strconv.Itoa(DatabaseTimeoutDefault)
	}

	params.Timeout, err = strconv.ParseUint(timeout, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dbTimeout %s: %w", timeout, err)
	}

	return params, nil
}

// InitStore opens the wallet store named by the database URL, retrying once per second for up to
// params.Timeout attempts.
func InitStore(params *DBParameters, logger *log.Log, opts ...StoreOpt) (*Store, error) {
	driver, url, err := parseURL(params.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", params.URL, err)
	}

	open, supported := supportedStores[driver]
	if !supported {
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}

	o := &storeOpts{}
	for _, opt := range opts {
		opt(o)
	}

	var store *Store

	err = retry(
		func() error {
			var openErr error
			store, openErr = open(url, params.Prefix, o)
			return openErr
		},
		params.Timeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init wallet store: %w", err)
	}

	return store, nil
}

func parseURL(u string) (string, string, error) {
	const urlParts = 2

	parsed := strings.SplitN(u, ":", urlParts)

	if len(parsed) != urlParts || parsed[0] == "" {
		return "", "", fmt.Errorf("invalid dbURL %s", u)
	}

	driver := parsed[0]

	switch driver {
	case "mongodb", "mongodb+srv", "redis", "rediss":
		// These clients need the full connection string (including the driver as part of it).
		return driver, u, nil
	}

	dsn := strings.TrimPrefix(parsed[1], "//")

	return driver, dsn, nil
}

func retry(task func() error, numRetries uint64, logger *log.Log) error {
	const sleep = 1 * time.Second

	return backoff.RetryNotify(
		task,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(sleep), numRetries),
		func(retryErr error, t time.Duration) {
			logger.Warn("Failed to connect to storage, will sleep before trying again.",
				logfields.WithSleep(t), log.WithError(retryErr))
		},
	)
}
