/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package view

import (
	"github.com/trustbloc/wallet/pkg/model"
)

// PresentationView lists the credentials that will be presented.
type PresentationView struct {
	Credentials []Credential `json:"credentials"`
}

func presentationView(s model.PresentationState) PresentationView {
	switch st := s.(type) {
	case model.PresentationCredentials:
		return PresentationView{Credentials: credentials(st.Credentials)}
	case model.PresentationApproved:
		return PresentationView{Credentials: credentials(st.Credentials)}
	default:
		return PresentationView{}
	}
}
