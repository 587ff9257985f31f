/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package urlencode

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/valyala/fastjson"
)

// ToJSON rebuilds a JSON object from query parameters. Values holding a JSON object or array
// are embedded as-is, everything else becomes a JSON string. Only the first value of a
// repeated key is used.
func ToJSON(values url.Values) ([]byte, error) {
	var arena fastjson.Arena

	obj := arena.NewObject()

	for key, vv := range values {
		if len(vv) == 0 {
			continue
		}

		v := vv[0]

		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			parsed, err := fastjson.Parse(trimmed)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", key, err)
			}

			obj.Set(key, parsed)

			continue
		}

		obj.Set(key, arena.NewString(v))
	}

	return obj.MarshalTo(nil), nil
}

// Query returns the query part of s: everything after the first '?', or s itself.
func Query(s string) string {
	if i := strings.Index(s, "?"); i >= 0 {
		return s[i+1:]
	}

	return s
}
