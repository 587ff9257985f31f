/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/models/presexch"
	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"github.com/trustbloc/wallet/internal/urlencode"
	"github.com/trustbloc/wallet/pkg/credential"
)

var (
	// ErrInvalidRequest is returned when a request object cannot be acted upon.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupported is returned for request features the wallet does not implement.
	ErrUnsupported = errors.New("unsupported")
)

const (
	submissionPath       = "$"
	submissionNestedPath = "$.verifiableCredential[0]"
)

// UnauthorizedFlow is a verified presentation request the holder has not approved yet.
type UnauthorizedFlow struct {
	id         string
	request    RequestObject
	submission presexch.PresentationSubmission
}

// NewFlow starts a presentation flow for a verified request object. Only presentation
// definitions passed by value are supported.
func NewFlow(request RequestObject) (UnauthorizedFlow, error) {
	pd, err := definition(&request)
	if err != nil {
		return UnauthorizedFlow{}, err
	}

	submission := presexch.PresentationSubmission{
		ID:           uuid.NewString(),
		DefinitionID: pd.ID,
		DescriptorMap: lo.Map(pd.InputDescriptors,
			func(d *presexch.InputDescriptor, _ int) *presexch.InputDescriptorMapping {
				return &presexch.InputDescriptorMapping{
					ID:     d.ID,
					Format: FormatJWTVCJSON,
					Path:   submissionPath,
					PathNested: &presexch.InputDescriptorMapping{
						Format: FormatJWTVCJSON,
						Path:   submissionNestedPath,
					},
				}
			}),
	}

	return UnauthorizedFlow{
		id:         uuid.NewString(),
		request:    cloneRequest(request),
		submission: submission,
	}, nil
}

// ID identifies the flow instance.
func (f UnauthorizedFlow) ID() string { return f.id }

// Request returns the request object.
func (f UnauthorizedFlow) Request() RequestObject { return cloneRequest(f.request) }

// Submission returns the presentation submission that will accompany the response.
func (f UnauthorizedFlow) Submission() presexch.PresentationSubmission {
	return cloneSubmission(f.submission)
}

// Filter returns the constraints of the first input descriptor.
func (f UnauthorizedFlow) Filter() (presexch.Constraints, error) {
	pd, err := definition(&f.request)
	if err != nil {
		return presexch.Constraints{}, err
	}

	if len(pd.InputDescriptors) == 0 {
		return presexch.Constraints{}, fmt.Errorf("%w: no input descriptors found", ErrInvalidRequest)
	}

	var constraints presexch.Constraints

	if c := pd.InputDescriptors[0].Constraints; c != nil {
		if err = copier.CopyWithOption(&constraints, c, copier.Option{DeepCopy: true}); err != nil {
			return presexch.Constraints{}, fmt.Errorf("copy constraints: %w", err)
		}
	}

	return constraints, nil
}

// Authorize records the holder's approval to present the credentials.
func (f UnauthorizedFlow) Authorize(credentials []credential.Credential) AuthorizedFlow {
	return AuthorizedFlow{
		id:          f.id,
		request:     cloneRequest(f.request),
		submission:  cloneSubmission(f.submission),
		credentials: append([]credential.Credential(nil), credentials...),
	}
}

// AuthorizedFlow is an approved presentation, ready to be signed and sent.
type AuthorizedFlow struct {
	id          string
	request     RequestObject
	submission  presexch.PresentationSubmission
	credentials []credential.Credential
}

// ID identifies the flow instance.
func (f AuthorizedFlow) ID() string { return f.id }

// Credentials returns the approved credentials.
func (f AuthorizedFlow) Credentials() []credential.Credential {
	return append([]credential.Credential(nil), f.credentials...)
}

// Payload builds the VP JWT payload. The holder is the DID part of the signing key id.
func (f AuthorizedFlow) Payload(kid string) (VPPayload, error) {
	pd, err := definition(&f.request)
	if err != nil {
		return VPPayload{}, err
	}

	holder, _, _ := strings.Cut(kid, "#")

	vp := VerifiablePresentation{
		Context: []string{CredentialsContext, ExamplesContext},
		ID:      "urn:uuid:" + uuid.NewString(),
		Type:    []string{VerifiablePresentationType},
		Holder:  holder,
	}

	for _, d := range pd.InputDescriptors {
		if d.Constraints == nil {
			continue
		}

		for _, field := range d.Constraints.Fields {
			if field.Filter == nil {
				continue
			}

			if s, ok := field.Filter.Const.(string); ok {
				vp.Type = append(vp.Type, s)
			}
		}
	}

	vp.VerifiableCredential = lo.Map(f.credentials, func(c credential.Credential, _ int) string {
		return c.Issued
	})

	return VPPayload{
		VP:       vp,
		ClientID: f.request.ClientID,
		Nonce:    f.request.Nonce,
	}, nil
}

// ResponseRequest builds the authorization response for the signed VP and the URI to post it
// to. ok is false when the request named no response URI.
func (f AuthorizedFlow) ResponseRequest(vpToken string) (req ResponseRequest, responseURI string, ok bool) {
	submission := cloneSubmission(f.submission)

	req = ResponseRequest{
		VPToken:                []string{vpToken},
		PresentationSubmission: &submission,
		State:                  f.request.State,
	}

	if f.request.ResponseURI == "" {
		return req, "", false
	}

	return req, strings.TrimRight(f.request.ResponseURI, "/"), true
}

// ParseRequestObject decodes a request object passed by value in a URL-encoded query. It
// returns false when the string does not carry an inline presentation definition, in which
// case the caller treats it as a request_uri.
func ParseRequestObject(request string) (*RequestObject, bool, error) {
	if !strings.Contains(request, "&presentation_definition") {
		return nil, false, nil
	}

	values, err := url.ParseQuery(urlencode.Query(request))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse request object: %w", err)
	}

	b, err := urlencode.ToJSON(values)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse request object: %w", err)
	}

	var ro RequestObject
	if err = json.Unmarshal(b, &ro); err != nil {
		return nil, false, fmt.Errorf("failed to parse request object: %w", err)
	}

	return &ro, true, nil
}

func definition(r *RequestObject) (*presexch.PresentationDefinition, error) {
	if r.PresentationDefinition == nil {
		if r.PresentationDefinitionURI != "" {
			return nil, fmt.Errorf("%w: presentation_definition_uri is unsupported", ErrUnsupported)
		}

		return nil, fmt.Errorf("%w: no presentation definition", ErrInvalidRequest)
	}

	return r.PresentationDefinition, nil
}

func cloneRequest(r RequestObject) RequestObject {
	var out RequestObject

	if err := copier.CopyWithOption(&out, &r, copier.Option{DeepCopy: true}); err != nil {
		return r
	}

	return out
}

func cloneSubmission(s presexch.PresentationSubmission) presexch.PresentationSubmission {
	out := s
	out.DescriptorMap = lo.Map(s.DescriptorMap,
		func(m *presexch.InputDescriptorMapping, _ int) *presexch.InputDescriptorMapping {
			c := *m
			if m.PathNested != nil {
				nested := *m.PathNested
				c.PathNested = &nested
			}

			return &c
		})

	return out
}
