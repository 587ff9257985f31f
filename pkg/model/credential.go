/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"github.com/trustbloc/wallet/pkg/credential"
)

// CredentialState is the stored credential list, with the selected credential if any.
type CredentialState struct {
	ID          string
	Credentials []credential.Credential
}

func (CredentialState) state() {}

// SelectCredential shows the detail of a stored credential. Outside the credential state the
// model is reset.
func (m Model) SelectCredential(id string) Model {
	s, err := m.credentialState()
	if err != nil {
		return m.Ready()
	}

	return Model{
		ActiveView: AspectCredentialDetail,
		State: CredentialState{
			ID:          id,
			Credentials: append([]credential.Credential(nil), s.Credentials...),
		},
	}
}

// CredentialsLoaded replaces the state with the credentials read from the store.
func (m Model) CredentialsLoaded(credentials []credential.Credential) Model {
	return Model{
		ActiveView: AspectCredentialList,
		State: CredentialState{
			Credentials: append([]credential.Credential(nil), credentials...),
		},
	}
}
