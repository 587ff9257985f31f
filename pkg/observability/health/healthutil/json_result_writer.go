/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexliesenfeld/health"
)

type healthStatus struct {
	Status     health.AvailabilityStatus `json:"status"`
	Components map[string]checkResult    `json:"components,omitempty"`
}

type checkResult struct {
	health.CheckResult
	LastResponseTime    string `json:"last_response_time,omitempty"`
	AverageResponseTime string `json:"avg_response_time,omitempty"`
}

// JSONResultWriter writes the checker result as JSON. Components the recorder has timed carry
// their last and average response times.
type JSONResultWriter struct {
	times *ResponseTimes
}

// NewJSONResultWriter returns a writer decorating components with times from the recorder.
func NewJSONResultWriter(times *ResponseTimes) *JSONResultWriter {
	return &JSONResultWriter{times: times}
}

// Write writes the result with the given status code.
func (rw *JSONResultWriter) Write(result *health.CheckerResult, status int, w http.ResponseWriter, _ *http.Request) error { //nolint:lll
	body := &healthStatus{Status: result.Status}

	if result.Details != nil {
		body.Components = make(map[string]checkResult, len(*result.Details))

		for name, cr := range *result.Details {
			body.Components[name] = rw.component(name, cr)
		}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal health status: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(b)

	return err
}

func (rw *JSONResultWriter) component(name string, cr health.CheckResult) checkResult {
	c := checkResult{CheckResult: cr}

	if rw.times == nil {
		return c
	}

	if t, ok := rw.times.Get(name); ok {
		c.LastResponseTime = t.LastResponseTime.String()
		c.AverageResponseTime = t.AverageResponseTime.String()
	}

	return c
}
