/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vp

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hyperledger/aries-framework-go/component/models/presexch"
)

const (
	// FormatJWTVCJSON is the descriptor format of a JWT-encoded VC inside a JWT VP.
	FormatJWTVCJSON = "jwt_vc_json"

	// ExamplesContext is added to every presentation built by the wallet.
	ExamplesContext = "https://www.w3.org/2018/credentials/examples/v1"
	// CredentialsContext is the W3C VC data model v1 context.
	CredentialsContext = "https://www.w3.org/2018/credentials/v1"

	// VerifiablePresentationType is the base presentation type.
	VerifiablePresentationType = "VerifiablePresentation"
)

// RequestObject is an OpenID4VP authorization request. The presentation definition is passed
// either by value or by reference (PresentationDefinitionURI).
type RequestObject struct {
	JTI                       string                           `json:"jti,omitempty"`
	IAT                       int64                            `json:"iat,omitempty"`
	Exp                       int64                            `json:"exp,omitempty"`
	ResponseType              string                           `json:"response_type,omitempty"`
	ResponseMode              string                           `json:"response_mode,omitempty"`
	ResponseURI               string                           `json:"response_uri,omitempty"`
	Scope                     string                           `json:"scope,omitempty"`
	Nonce                     string                           `json:"nonce"`
	ClientID                  string                           `json:"client_id"`
	ClientIDScheme            string                           `json:"client_id_scheme,omitempty"`
	State                     string                           `json:"state,omitempty"`
	ClientMetadata            *ClientMetadata                  `json:"client_metadata,omitempty"`
	PresentationDefinition    *presexch.PresentationDefinition `json:"presentation_definition,omitempty"`
	PresentationDefinitionURI string                           `json:"presentation_definition_uri,omitempty"`
}

// ClientMetadata describes the verifier.
type ClientMetadata struct {
	ClientName                  string           `json:"client_name,omitempty"`
	ClientPurpose               string           `json:"client_purpose,omitempty"`
	SubjectSyntaxTypesSupported []string         `json:"subject_syntax_types_supported,omitempty"`
	VPFormats                   *presexch.Format `json:"vp_formats,omitempty"`
}

// RequestObjectResponse is the verifier's answer to a request_uri fetch.
type RequestObjectResponse struct {
	RequestObject string `json:"request_object"`
}

// VerifiablePresentation is the W3C VP data model object carried in the "vp" claim.
type VerifiablePresentation struct {
	Context              []string `json:"@context"`
	ID                   string   `json:"id,omitempty"`
	Type                 []string `json:"type"`
	Holder               string   `json:"holder,omitempty"`
	VerifiableCredential []string `json:"verifiableCredential"`
}

// VPPayload holds what goes into a VP JWT.
type VPPayload struct {
	VP       VerifiablePresentation
	ClientID string
	Nonce    string
}

// ResponseRequest is the authorization response posted to the verifier.
type ResponseRequest struct {
	VPToken                []string                         `json:"vp_token"`
	PresentationSubmission *presexch.PresentationSubmission `json:"presentation_submission"`
	State                  string                           `json:"state,omitempty"`
}

// Form encodes the response as an application/x-www-form-urlencoded body. A single token is
// sent as a bare string, several as a JSON array.
func (r *ResponseRequest) Form() (url.Values, error) {
	v := url.Values{}

	switch len(r.VPToken) {
	case 0:
	case 1:
		v.Set("vp_token", r.VPToken[0])
	default:
		b, err := json.Marshal(r.VPToken)
		if err != nil {
			return nil, fmt.Errorf("marshal vp_token: %w", err)
		}

		v.Set("vp_token", string(b))
	}

	if r.PresentationSubmission != nil {
		b, err := json.Marshal(r.PresentationSubmission)
		if err != nil {
			return nil, fmt.Errorf("marshal presentation_submission: %w", err)
		}

		v.Set("presentation_submission", string(b))
	}

	if r.State != "" {
		v.Set("state", r.State)
	}

	return v, nil
}

// ResponseResponse is the verifier's reply to an authorization response.
type ResponseResponse struct {
	RedirectURI string `json:"redirect_uri,omitempty"`
}
