/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil

import (
	"context"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"
)

const checkTimeout = 5 * time.Second

// CheckFunc reports the availability of a dependency.
type CheckFunc = func(ctx context.Context) error

// NewCheck wraps a CheckFunc the way the wallet expects its dependencies to be checked: a single
// failure marks the component as down.
func NewCheck(name string, check CheckFunc) health.Check {
	return health.Check{
		Name:               name,
		Check:              check,
		Timeout:            checkTimeout,
		MaxTimeInError:     1,
		MaxContiguousFails: 1,
	}
}

// NewHandler returns the /healthcheck handler. Each check reports its last and average response time.
func NewHandler(checks ...health.Check) http.Handler {
	times := NewResponseTimes()

	opts := []health.CheckerOption{
		health.WithCacheDuration(0),
		health.WithInterceptors(times.Interceptor()),
	}

	for _, c := range checks {
		opts = append(opts, health.WithCheck(c))
	}

	return health.NewHandler(health.NewChecker(opts...),
		health.WithResultWriter(NewJSONResultWriter(times)),
	)
}
