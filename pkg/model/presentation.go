/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"github.com/hyperledger/aries-framework-go/component/models/presexch"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
)

// PresentationState is the state of a cross-device presentation.
type PresentationState interface {
	State
	presentation()
}

// PresentationInactive means no presentation is in progress.
type PresentationInactive struct{}

// PresentationRequested holds the request object JWT before it is verified.
type PresentationRequested struct {
	RequestPayload string
}

// PresentationVerified holds the flow for a verified request.
type PresentationVerified struct {
	Flow oidc4vp.UnauthorizedFlow
}

// PresentationCredentials holds the stored credentials matching the request.
type PresentationCredentials struct {
	Flow        oidc4vp.UnauthorizedFlow
	Credentials []credential.Credential
}

// PresentationApproved holds the flow the holder approved.
type PresentationApproved struct {
	Flow        oidc4vp.AuthorizedFlow
	Credentials []credential.Credential
}

func (PresentationInactive) state()    {}
func (PresentationRequested) state()   {}
func (PresentationVerified) state()    {}
func (PresentationCredentials) state() {}
func (PresentationApproved) state()    {}

func (PresentationInactive) presentation()    {}
func (PresentationRequested) presentation()   {}
func (PresentationVerified) presentation()    {}
func (PresentationCredentials) presentation() {}
func (PresentationApproved) presentation()    {}

// ScanPresentationRequest starts waiting for a presentation request.
func (m Model) ScanPresentationRequest() Model {
	return Model{
		ActiveView: AspectPresentationScan,
		State:      PresentationInactive{},
	}
}

// PresentationRequest keeps the received request object while its signer is resolved. The model
// must be waiting for a request.
func (m Model) PresentationRequest(payload string) (Model, error) {
	s, err := m.presentationState()
	if err != nil {
		return Model{}, err
	}

	if _, ok := s.(PresentationInactive); !ok {
		return Model{}, stateError("unexpected presentation state to apply request")
	}

	return Model{
		ActiveView: m.ActiveView,
		State:      PresentationRequested{RequestPayload: payload},
	}, nil
}

// PresentationRequestPayload returns the request object waiting for verification.
func (m Model) PresentationRequestPayload() (string, bool) {
	r, ok := m.State.(PresentationRequested)
	if !ok {
		return "", false
	}

	return r.RequestPayload, true
}

// PresentationVerified starts the flow for the verified request object.
func (m Model) PresentationVerified(request oidc4vp.RequestObject) (Model, error) {
	s, err := m.presentationState()
	if err != nil {
		return Model{}, err
	}

	if _, ok := s.(PresentationRequested); !ok {
		return Model{}, stateError("unexpected presentation state to apply verified request")
	}

	flow, err := oidc4vp.NewFlow(request)
	if err != nil {
		return Model{}, err
	}

	return Model{ActiveView: m.ActiveView, State: PresentationVerified{Flow: flow}}, nil
}

// PresentationFilter returns the constraints stored credentials are matched against.
func (m Model) PresentationFilter() (presexch.Constraints, error) {
	s, err := m.presentationState()
	if err != nil {
		return presexch.Constraints{}, err
	}

	v, ok := s.(PresentationVerified)
	if !ok {
		return presexch.Constraints{}, stateError("unexpected presentation state to get filter")
	}

	return v.Flow.Filter()
}

// PresentationCredentials records the matching credentials and asks the holder to approve.
func (m Model) PresentationCredentials(credentials []credential.Credential) (Model, error) {
	s, err := m.presentationState()
	if err != nil {
		return Model{}, err
	}

	v, ok := s.(PresentationVerified)
	if !ok {
		return Model{}, stateError("unexpected presentation state to apply credentials")
	}

	return Model{
		ActiveView: AspectPresentationRequest,
		State: PresentationCredentials{
			Flow:        v.Flow,
			Credentials: append([]credential.Credential(nil), credentials...),
		},
	}, nil
}

// PresentationApprove authorizes the presentation of the matching credentials.
func (m Model) PresentationApprove() (Model, error) {
	s, err := m.presentationState()
	if err != nil {
		return Model{}, err
	}

	c, ok := s.(PresentationCredentials)
	if !ok {
		return Model{}, stateError("unexpected presentation state to approve")
	}

	return Model{
		ActiveView: m.ActiveView,
		State: PresentationApproved{
			Flow:        c.Flow.Authorize(c.Credentials),
			Credentials: append([]credential.Credential(nil), c.Credentials...),
		},
	}, nil
}

// PresentationPayload builds the VP payload for the holder key.
func (m Model) PresentationPayload(kid string) (oidc4vp.VPPayload, error) {
	s, err := m.presentationState()
	if err != nil {
		return oidc4vp.VPPayload{}, err
	}

	a, ok := s.(PresentationApproved)
	if !ok {
		return oidc4vp.VPPayload{}, stateError("unexpected presentation state to get payload")
	}

	return a.Flow.Payload(kid)
}

// PresentationResponse builds the authorization response for the signed VP and the URI to send
// it to. ok is false when the request named no response URI.
func (m Model) PresentationResponse(vpJWT string) (req oidc4vp.ResponseRequest, uri string, ok bool, err error) {
	s, err := m.presentationState()
	if err != nil {
		return oidc4vp.ResponseRequest{}, "", false, err
	}

	a, isApproved := s.(PresentationApproved)
	if !isApproved {
		return oidc4vp.ResponseRequest{}, "", false,
			stateError("unexpected presentation state to create response request")
	}

	req, uri, ok = a.Flow.ResponseRequest(vpJWT)

	return req, uri, ok, nil
}

// PresentationSucceeded shows the verifier accepted the approved presentation.
func (m Model) PresentationSucceeded() (Model, error) {
	s, err := m.presentationState()
	if err != nil {
		return Model{}, err
	}

	if _, ok := s.(PresentationApproved); !ok {
		return Model{}, stateError("unexpected presentation state to complete presentation")
	}

	return Model{ActiveView: AspectPresentationSuccess, State: s}, nil
}
