/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vci

import (
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/trustbloc/wallet/pkg/credential"
)

// An issuance runs through three flow types, one per protocol phase:
//
//	PendingFlow  --Accept-->  AcceptedFlow  --Token-->  AuthorizedFlow
//
// Each transition consumes a value and returns the next phase, so a token request cannot be
// built before acceptance and a credential request cannot be built before a token exists.

type flowData struct {
	clientID  string
	subjectID string
	issuer    IssuerMetadata
	offer     CredentialOffer
	grant     PreAuthorizedCodeGrant
}

// ClientID is the wallet's OAuth client identifier.
func (f flowData) ClientID() string { return f.clientID }

// SubjectID is the holder's subject identifier.
func (f flowData) SubjectID() string { return f.subjectID }

// Issuer returns the issuer metadata.
func (f flowData) Issuer() IssuerMetadata { return f.issuer.Clone() }

// Offer returns the credential offer.
func (f flowData) Offer() CredentialOffer {
	o := f.offer
	o.CredentialConfigurationIDs = append([]string(nil), f.offer.CredentialConfigurationIDs...)

	return o
}

// Grant returns the pre-authorized code grant.
func (f flowData) Grant() PreAuthorizedCodeGrant { return f.grant }

// Offered returns the offered credential configurations the issuer supports, keyed by
// configuration id. Ids missing from the issuer metadata are skipped.
func (f flowData) Offered() map[string]CredentialConfiguration {
	issuer := f.issuer.Clone()
	offered := make(map[string]CredentialConfiguration)

	for _, id := range f.offer.CredentialConfigurationIDs {
		if cfg, ok := issuer.CredentialConfigurationsSupported[id]; ok {
			offered[id] = cfg
		}
	}

	return offered
}

func (f flowData) clone() flowData {
	return flowData{
		clientID:  f.clientID,
		subjectID: f.subjectID,
		issuer:    f.issuer.Clone(),
		offer:     f.Offer(),
		grant:     f.grant,
	}
}

// PendingFlow is an offered issuance with issuer metadata that the holder has not accepted yet.
type PendingFlow struct {
	flowData
}

// NewPendingFlow starts an issuance flow for a pre-authorized code offer.
func NewPendingFlow(
	clientID, subjectID string,
	issuer IssuerMetadata,
	offer CredentialOffer,
	grant PreAuthorizedCodeGrant,
) PendingFlow {
	f := flowData{
		clientID:  clientID,
		subjectID: subjectID,
		issuer:    issuer,
		offer:     offer,
		grant:     grant,
	}

	return PendingFlow{flowData: f.clone()}
}

// Accept accepts the offer. A nil spec accepts everything on offer; otherwise only the listed
// configurations (and claims) are requested. The pin may be empty.
func (f PendingFlow) Accept(spec []AuthorizationSpec, pin string) AcceptedFlow {
	return AcceptedFlow{
		flowData: f.clone(),
		accepted: cloneSpecs(spec),
		pin:      pin,
	}
}

// AcceptedFlow is an accepted issuance waiting for an access token.
type AcceptedFlow struct {
	flowData
	accepted []AuthorizationSpec
	pin      string
}

// PIN returns the transaction code entered by the holder, empty if none.
func (f AcceptedFlow) PIN() string { return f.pin }

// Accepted returns the narrowed acceptance, nil when the whole offer was accepted.
func (f AcceptedFlow) Accepted() []AuthorizationSpec { return cloneSpecs(f.accepted) }

// WithPIN returns a copy of the flow carrying the transaction code.
func (f AcceptedFlow) WithPIN(pin string) AcceptedFlow {
	return AcceptedFlow{
		flowData: f.clone(),
		accepted: cloneSpecs(f.accepted),
		pin:      pin,
	}
}

// TokenRequest builds the token request for the pre-authorized code grant.
func (f AcceptedFlow) TokenRequest() TokenRequest {
	req := TokenRequest{
		GrantType:         PreAuthorizedCodeGrantType,
		PreAuthorizedCode: f.grant.PreAuthorizedCode,
		TxCode:            f.pin,
		ClientID:          f.clientID,
	}

	for _, spec := range f.accepted {
		req.AuthorizationDetails = append(req.AuthorizationDetails, AuthorizationDetail{
			Type:                      AuthorizationDetailsType,
			CredentialConfigurationID: spec.CredentialConfigurationID,
			Claims:                    lo.Assign(spec.Claims),
		})
	}

	return req
}

// Token attaches the token response and moves the flow to the authorized phase.
func (f AcceptedFlow) Token(token TokenResponse) AuthorizedFlow {
	return AuthorizedFlow{
		flowData: f.clone(),
		accepted: cloneSpecs(f.accepted),
		pin:      f.pin,
		token:    cloneToken(token),
		deferred: map[string]string{},
	}
}

// AuthorizedFlow holds an access token and accumulates issued credentials.
type AuthorizedFlow struct {
	flowData
	accepted    []AuthorizationSpec
	pin         string
	token       TokenResponse
	credentials []credential.Credential
	deferred    map[string]string
}

// PIN returns the transaction code used for the token request.
func (f AuthorizedFlow) PIN() string { return f.pin }

// Token returns the token response.
func (f AuthorizedFlow) Token() TokenResponse { return cloneToken(f.token) }

// ProofClaims builds the claims of the proof of possession JWT.
func (f AuthorizedFlow) ProofClaims(now time.Time) ProofClaims {
	return ProofClaims{
		Issuer:   f.clientID,
		Audience: f.issuer.CredentialIssuer,
		IssuedAt: jwt.NewNumericDate(now),
		Nonce:    f.token.CNonce,
	}
}

// ConfigCredentialRequest pairs a credential request with its credential configuration id.
type ConfigCredentialRequest struct {
	ConfigID string
	Request  CredentialRequest
}

// CredentialRequests builds one credential request per credential identifier, bound to the
// proof JWT.
func (f AuthorizedFlow) CredentialRequests(identifiers []string, proofJWT string) []ConfigCredentialRequest {
	requests := make([]ConfigCredentialRequest, 0, len(identifiers))

	for _, id := range identifiers {
		requests = append(requests, ConfigCredentialRequest{
			ConfigID: f.configIDForIdentifier(id),
			Request: CredentialRequest{
				CredentialIdentifier: id,
				Proof: &Proof{
					ProofType: ProofTypeJWT,
					JWT:       proofJWT,
				},
			},
		})
	}

	return requests
}

func (f AuthorizedFlow) configIDForIdentifier(identifier string) string {
	for _, d := range f.token.AuthorizationDetails {
		if lo.Contains(d.CredentialIdentifiers, identifier) {
			return d.CredentialConfigurationID
		}
	}

	return ""
}

// AddCredential records a verified credential issued for the given configuration. The issued
// string is the credential as received (compact JWT) and issuedAt is its "iat" in Unix seconds.
func (f AuthorizedFlow) AddCredential(
	vc credential.VerifiableCredential,
	issued string,
	issuedAt int64,
	configID string,
	logo, background *credential.ImageData,
) (AuthorizedFlow, error) {
	cfg, ok := f.issuer.CredentialConfigurationsSupported[configID]
	if !ok {
		return AuthorizedFlow{}, fmt.Errorf("%w: credential configuration %s is not supported by issuer",
			ErrInvalidRequest, configID)
	}

	validFrom, validUntil := vc.ValidityPeriod()

	c := credential.Credential{
		ID:            lo.Ternary(vc.ID != "", vc.ID, uuid.NewString()),
		ConfigID:      configID,
		Issuer:        lo.Ternary(vc.IssuerID() != "", vc.IssuerID(), f.issuer.CredentialIssuer),
		IssuerName:    f.issuer.DisplayName(""),
		Type:          append([]string(nil), vc.Type...),
		Format:        cfg.Format,
		SubjectClaims: vc.Subjects(),
		Issued:        issued,
		IssuanceDate:  time.Unix(issuedAt, 0).UTC(),
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		Logo:          logo,
		Background:    background,
	}

	if cfg.CredentialDefinition != nil && len(cfg.CredentialDefinition.CredentialSubject) > 0 {
		c.ClaimDefinitions = make(map[string]credential.ClaimDefinition)

		for name, def := range cfg.CredentialDefinition.CredentialSubject {
			cd := credential.ClaimDefinition{ValueType: def.ValueType, Name: name}
			if len(def.Display) > 0 {
				cd.Name = def.Display[0].Name
			}

			c.ClaimDefinitions[name] = cd
		}
	}

	if len(cfg.Display) > 0 {
		d := cfg.Display[0]
		c.Display = &credential.Display{
			Name:            d.Name,
			Description:     d.Description,
			BackgroundColor: d.BackgroundColor,
			TextColor:       d.TextColor,
		}
	}

	next := f.clone()
	next.credentials = append(next.credentials, c)

	return next, nil
}

// AddDeferred records a deferred issuance transaction for a configuration.
func (f AuthorizedFlow) AddDeferred(transactionID, configID string) AuthorizedFlow {
	next := f.clone()
	next.deferred[transactionID] = configID

	return next
}

// Credentials returns the credentials issued so far.
func (f AuthorizedFlow) Credentials() []credential.Credential {
	return append([]credential.Credential(nil), f.credentials...)
}

// Deferred returns the deferred transaction ids mapped to their configuration ids.
func (f AuthorizedFlow) Deferred() map[string]string {
	return lo.Assign(f.deferred)
}

func (f AuthorizedFlow) clone() AuthorizedFlow {
	return AuthorizedFlow{
		flowData:    f.flowData.clone(),
		accepted:    cloneSpecs(f.accepted),
		pin:         f.pin,
		token:       cloneToken(f.token),
		credentials: append([]credential.Credential(nil), f.credentials...),
		deferred:    lo.Assign(f.deferred),
	}
}

func cloneSpecs(specs []AuthorizationSpec) []AuthorizationSpec {
	if specs == nil {
		return nil
	}

	return lo.Map(specs, func(s AuthorizationSpec, _ int) AuthorizationSpec {
		return AuthorizationSpec{
			CredentialConfigurationID: s.CredentialConfigurationID,
			Claims:                    lo.Assign(s.Claims),
		}
	})
}

func cloneToken(t TokenResponse) TokenResponse {
	out := t
	out.AuthorizationDetails = lo.Map(t.AuthorizationDetails, func(d AuthorizationDetail, _ int) AuthorizationDetail {
		d.Claims = lo.Assign(d.Claims)
		d.CredentialIdentifiers = append([]string(nil), d.CredentialIdentifiers...)

		return d
	})

	if t.AuthorizationDetails == nil {
		out.AuthorizationDetails = nil
	}

	return out
}
