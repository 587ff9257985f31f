/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialfilter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/hyperledger/aries-framework-go/component/models/presexch"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/wallet/pkg/credential"
)

const arrayType = "array"

// Satisfied reports whether the credential satisfies every field of the constraints. A field is
// satisfied when one of its paths resolves to a value accepted by the field filter (any value
// when there is no filter).
func Satisfied(c *credential.Credential, constraints *presexch.Constraints) (bool, error) {
	if constraints == nil || len(constraints.Fields) == 0 {
		return true, nil
	}

	doc, err := document(c)
	if err != nil {
		return false, err
	}

	for _, field := range constraints.Fields {
		match, matchErr := matchField(field, doc)
		if matchErr != nil {
			return false, matchErr
		}

		if !match {
			return false, nil
		}
	}

	return true, nil
}

// Matching returns the credentials satisfying the constraints, keeping their order. A credential
// that cannot be evaluated fails the whole match.
func Matching(credentials []credential.Credential, constraints *presexch.Constraints) ([]credential.Credential, error) {
	var matched []credential.Credential

	for i := range credentials {
		ok, err := Satisfied(&credentials[i], constraints)
		if err != nil {
			return nil, fmt.Errorf("match credential %s: %w", credentials[i].ID, err)
		}

		if ok {
			matched = append(matched, credentials[i])
		}
	}

	return matched, nil
}

func document(c *credential.Credential) (interface{}, error) {
	b, err := json.Marshal(c.Document())
	if err != nil {
		return nil, fmt.Errorf("marshal credential: %w", err)
	}

	var doc interface{}
	if err = json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return doc, nil
}

func matchField(field *presexch.Field, doc interface{}) (bool, error) {
	for _, path := range field.Path {
		value, err := valueAtPath(path, doc)
		if err != nil {
			return false, err
		}

		if value == nil {
			continue
		}

		if field.Filter == nil {
			return true, nil
		}

		match, err := matchFilter(field.Filter, value)
		if err != nil {
			return false, err
		}

		if match {
			return true, nil
		}
	}

	return false, nil
}

// valueAtPath evaluates the JSON path. A missing key is reported as a nil value.
func valueAtPath(path string, doc interface{}) (interface{}, error) {
	value, err := jsonpath.Get(path, doc)
	if err != nil {
		if strings.HasPrefix(err.Error(), "unknown key") || strings.HasPrefix(err.Error(), "unsupported value type") ||
			strings.HasPrefix(err.Error(), "index out of range") {
			return nil, nil
		}

		return nil, fmt.Errorf("evaluate path %s: %w", path, err)
	}

	return value, nil
}

// matchFilter validates the value against the filter, a JSON schema. Arrays match when any
// element does, unless the filter itself asks for an array.
func matchFilter(filter *presexch.Filter, value interface{}) (bool, error) {
	schema, err := json.Marshal(filter)
	if err != nil {
		return false, fmt.Errorf("marshal filter: %w", err)
	}

	loader := gojsonschema.NewBytesLoader(schema)

	if values, ok := value.([]interface{}); ok && (filter.Type == nil || *filter.Type != arrayType) {
		for _, v := range values {
			match, matchErr := validate(loader, v)
			if matchErr != nil {
				return false, matchErr
			}

			if match {
				return true, nil
			}
		}

		return false, nil
	}

	return validate(loader, value)
}

func validate(schema gojsonschema.JSONLoader, value interface{}) (bool, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(value))
	if err != nil {
		return false, fmt.Errorf("validate filter: %w", err)
	}

	return result.Valid(), nil
}
