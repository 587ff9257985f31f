/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package view projects the application model into the shape a user interface renders.
package view

import (
	"github.com/trustbloc/wallet/pkg/model"
)

// ViewModel is everything a user interface needs to render the active aspect.
type ViewModel struct {
	ActiveView   model.Aspect     `json:"active_view"`
	Credential   CredentialView   `json:"credential_view"`
	Issuance     IssuanceView     `json:"issuance_view"`
	Presentation PresentationView `json:"presentation_view"`
	Error        string           `json:"error,omitempty"`
}

// From projects the model. Views for flows that are not active are empty.
func From(m model.Model) ViewModel {
	vm := ViewModel{
		ActiveView: m.ActiveView,
		Issuance:   emptyIssuanceView(),
	}

	switch s := m.State.(type) {
	case model.CredentialState:
		vm.Credential = credentialView(s)
	case model.IssuanceState:
		vm.Issuance = issuanceView(s)
	case model.PresentationState:
		vm.Presentation = presentationView(s)
	case model.ErrorState:
		vm.Error = s.Message
	}

	return vm
}
