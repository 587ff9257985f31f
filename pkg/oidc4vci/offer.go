/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vci

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/trustbloc/wallet/internal/urlencode"
)

var (
	// ErrInvalidRequest is returned when a request or response violates the protocol.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupported is returned for protocol features the wallet does not implement.
	ErrUnsupported = errors.New("unsupported")
)

const credentialOfferParam = "credential_offer"

// ParseCredentialOffer decodes a URL-encoded credential offer. The input is either a full
// openid-credential-offer:// URI, a query string with a "credential_offer" parameter holding the
// offer JSON, or the offer object flattened into query parameters (JSON-valued parameters for
// arrays and objects).
func ParseCredentialOffer(encoded string) (CredentialOffer, error) {
	values, err := url.ParseQuery(urlencode.Query(encoded))
	if err != nil {
		return CredentialOffer{}, fmt.Errorf("failed to url decode offer string: %w", err)
	}

	var payload []byte

	if raw := values.Get(credentialOfferParam); raw != "" {
		payload = []byte(raw)
	} else {
		payload, err = urlencode.ToJSON(values)
		if err != nil {
			return CredentialOffer{}, fmt.Errorf("failed to deserialize offer string: %w", err)
		}
	}

	var offer CredentialOffer
	if err = json.Unmarshal(payload, &offer); err != nil {
		return CredentialOffer{}, fmt.Errorf("failed to deserialize offer string: %w", err)
	}

	if offer.CredentialIssuer == "" {
		return CredentialOffer{}, fmt.Errorf("%w: credential_issuer is missing", ErrInvalidRequest)
	}

	return offer, nil
}
