/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package attributeutil

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"
)

const redacted = "[REDACTED]"

// Secrets the wallet sends to issuers and verifiers. They never end up in span attributes.
var (
	SensitiveFormParams = []string{"pre-authorized_code", "tx_code", "vp_token"} //nolint:gochecknoglobals
	SensitiveHeaders    = []string{"Authorization"}                            //nolint:gochecknoglobals
	SensitiveJSONPaths  = []string{"access_token", "c_nonce", "proof.jwt"}     //nolint:gochecknoglobals
)

// JSON returns attribute with the value marshaled to JSON. Value can be redacted using WithRedacted option.
func JSON(key string, value interface{}, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	b, err := json.Marshal(value)
	if err != nil {
		return attribute.KeyValue{
			Key:   attribute.Key(key),
			Value: attribute.Value{},
		}
	}

	return attribute.String(key, string(redactJSON(b, op.redacted)))
}

// JSONBytes returns attribute with an already encoded JSON document. A body that is not JSON is
// reported by its size only.
func JSONBytes(key string, body []byte, opts ...Opt) attribute.KeyValue {
	if !gjson.ValidBytes(body) {
		return attribute.Int(key+".size", len(body))
	}

	return attribute.String(key, string(redactJSON(body, newOptions(opts).redacted)))
}

// FormParams returns attribute with value represented as form params, ordered by key. Value can
// be redacted using WithRedacted option.
func FormParams(key string, params url.Values, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	keys := lo.Keys(params)
	slices.Sort(keys)

	var buf strings.Builder

	for _, k := range keys {
		if buf.Len() > 0 {
			buf.WriteByte('&')
		}

		v := params[k]
		if slices.Contains(op.redacted, k) {
			v = []string{redacted}
		}

		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(strings.Join(v, "&"))
	}

	return attribute.String(key, buf.String())
}

// Headers returns attribute with the request headers, ordered by name. Header names passed to
// WithRedacted are matched in canonical form.
func Headers(key string, header http.Header, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	names := lo.Map(op.redacted, func(n string, _ int) string { return http.CanonicalHeaderKey(n) })

	values := make(url.Values, len(header))

	for k, v := range header {
		values[http.CanonicalHeaderKey(k)] = v
	}

	return FormParams(key, values, WithRedacted(names...))
}

func redactJSON(b []byte, paths []string) []byte {
	for _, path := range paths {
		if gjson.GetBytes(b, path).Exists() {
			b, _ = sjson.SetBytes(b, path, redacted)
		}
	}

	return b
}

type options struct {
	redacted []string
}

// Opt configures attribute creation.
type Opt func(*options)

func newOptions(opts []Opt) *options {
	op := &options{}

	for _, opt := range opts {
		opt(op)
	}

	return op
}

// WithRedacted returns option that replaces value with [REDACTED] for the given keys. In case of JSON attribute, key
// is a path to the value to be redacted. Refer to https://github.com/tidwall/gjson/blob/master/SYNTAX.md for path
// syntax.
func WithRedacted(keys ...string) Opt {
	return func(o *options) {
		o.redacted = append(o.redacted, keys...)
	}
}
