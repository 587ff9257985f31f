/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"errors"
)

// ErrUnexpectedState is matched by every error returned when an operation is applied to a state
// other than its predecessor.
var ErrUnexpectedState = errors.New("unexpected state")

// stateError keeps the operation specific message while matching ErrUnexpectedState.
type stateError string

func (e stateError) Error() string { return string(e) }

func (e stateError) Is(target error) bool { return target == ErrUnexpectedState }

// Aspect is the screen (or page) of the application that is active.
type Aspect string

// Aspects.
const (
	AspectCredentialList      Aspect = "CredentialList"
	AspectCredentialDetail    Aspect = "CredentialDetail"
	AspectIssuanceScan        Aspect = "IssuanceScan"
	AspectIssuanceOffer       Aspect = "IssuanceOffer"
	AspectIssuancePin         Aspect = "IssuancePin"
	AspectPresentationScan    Aspect = "PresentationScan"
	AspectPresentationRequest Aspect = "PresentationRequest"
	AspectPresentationSuccess Aspect = "PresentationSuccess"
	AspectError               Aspect = "Error"
)

// State is one of CredentialState, IssuanceState, PresentationState or ErrorState.
type State interface {
	state()
}

// ErrorState holds the message of the last error.
type ErrorState struct {
	Message string
}

func (ErrorState) state() {}

// Model combines the active aspect with the flow state. Operations never modify the receiver;
// they return a new Model.
type Model struct {
	ActiveView Aspect
	State      State
}

// New returns the initial model: an empty credential list.
func New() Model {
	return Model{
		ActiveView: AspectCredentialList,
		State:      CredentialState{},
	}
}

// Error moves the model to the error aspect.
func (m Model) Error(message string) Model {
	return Model{
		ActiveView: AspectError,
		State:      ErrorState{Message: message},
	}
}

// Ready resets the model to an empty credential list, abandoning any flow in progress.
func (m Model) Ready() Model {
	return New()
}

// WithActiveView returns the model with the aspect replaced.
func (m Model) WithActiveView(aspect Aspect) Model {
	return Model{
		ActiveView: aspect,
		State:      m.State,
	}
}

func (m Model) credentialState() (CredentialState, error) {
	if s, ok := m.State.(CredentialState); ok {
		return s, nil
	}

	return CredentialState{}, stateError("not in credential state")
}

func (m Model) issuanceState() (IssuanceState, error) {
	if s, ok := m.State.(IssuanceState); ok {
		return s, nil
	}

	return nil, stateError("not in issuance state")
}

func (m Model) presentationState() (PresentationState, error) {
	if s, ok := m.State.(PresentationState); ok {
		return s, nil
	}

	return nil, stateError("not in presentation state")
}
