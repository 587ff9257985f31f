/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package view

import (
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
)

const defaultInputMode = "numeric"

// TxCode describes the transaction code the issuer expects.
type TxCode struct {
	// InputMode is "numeric" or "text".
	InputMode string `json:"input_mode"`
	// Length is the number of characters expected, zero when not known.
	Length int `json:"length"`
	// Description is helper text to show the holder.
	Description string `json:"description"`
}

// IssuanceView is the offer under review.
type IssuanceView struct {
	Credentials []Credential `json:"credentials"`
	PIN         string       `json:"pin"`
	TxCode      TxCode       `json:"tx_code"`
}

func emptyIssuanceView() IssuanceView {
	return IssuanceView{TxCode: TxCode{InputMode: defaultInputMode}}
}

func txCode(offer oidc4vci.CredentialOffer) TxCode {
	tc := TxCode{InputMode: defaultInputMode}

	grant, ok := offer.PreAuthorizedCode()
	if !ok || grant.TxCode == nil {
		return tc
	}

	if grant.TxCode.InputMode != "" {
		tc.InputMode = grant.TxCode.InputMode
	}

	tc.Length = grant.TxCode.Length
	tc.Description = grant.TxCode.Description

	return tc
}

func issuanceView(s model.IssuanceState) IssuanceView {
	var (
		offered []model.OfferedCredential
		issuer  oidc4vci.IssuerMetadata
		offer   oidc4vci.CredentialOffer
		pin     string
	)

	switch st := s.(type) {
	case model.IssuanceIssuerMetadata:
		offered, issuer, offer = st.Offered, st.Flow.Issuer(), st.Flow.Offer()
	case model.IssuanceAccepted:
		offered, issuer, offer, pin = st.Offered, st.Flow.Issuer(), st.Flow.Offer(), st.Flow.PIN()
	case model.IssuanceToken:
		offered, issuer, offer, pin = st.Offered, st.Flow.Issuer(), st.Flow.Offer(), st.Flow.PIN()
	case model.IssuanceProof:
		offered, issuer, offer, pin = st.Offered, st.Flow.Issuer(), st.Flow.Offer(), st.Flow.PIN()
	case model.IssuanceIssued:
		offered, issuer, offer, pin = st.Offered, st.Flow.Issuer(), st.Flow.Offer(), st.Flow.PIN()
	default:
		return emptyIssuanceView()
	}

	name := issuer.DisplayName("")

	v := IssuanceView{
		Credentials: make([]Credential, 0, len(offered)),
		PIN:         pin,
		TxCode:      txCode(offer),
	}

	for i := range offered {
		v.Credentials = append(v.Credentials, fromOffer(issuer.CredentialIssuer, name, &offered[i]))
	}

	return v
}
