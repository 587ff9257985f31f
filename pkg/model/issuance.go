/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
)

// OfferedCredential is an offered credential configuration with the images fetched for it.
type OfferedCredential struct {
	ConfigID   string
	Config     oidc4vci.CredentialConfiguration
	Logo       *credential.ImageData
	Background *credential.ImageData
}

// LogoURL returns the logo to fetch, empty when there is none or it is already fetched.
func (c *OfferedCredential) LogoURL() string {
	if c.Logo != nil {
		return ""
	}

	return c.Config.LogoURI()
}

// BackgroundURL returns the background image to fetch, empty when there is none or it is
// already fetched.
func (c *OfferedCredential) BackgroundURL() string {
	if c.Background != nil {
		return ""
	}

	return c.Config.BackgroundImageURI()
}

// IssuanceState is the state of a pre-authorized code issuance. Only the first offered
// credential is driven through the flow.
type IssuanceState interface {
	State
	issuance()
}

// IssuanceInactive means no issuance is in progress.
type IssuanceInactive struct{}

// IssuanceOffered holds a decoded offer.
type IssuanceOffered struct {
	Offer oidc4vci.CredentialOffer
	Grant oidc4vci.PreAuthorizedCodeGrant
}

// IssuanceIssuerMetadata holds the flow once the issuer metadata is known. Images are attached
// in this state.
type IssuanceIssuerMetadata struct {
	Flow    oidc4vci.PendingFlow
	Offered []OfferedCredential
}

// IssuanceAccepted holds an accepted flow, waiting for a PIN or a token.
type IssuanceAccepted struct {
	Flow    oidc4vci.AcceptedFlow
	Offered []OfferedCredential
}

// IssuanceToken holds a flow with an access token.
type IssuanceToken struct {
	Flow    oidc4vci.AuthorizedFlow
	Offered []OfferedCredential
}

// IssuanceProof holds a flow with a signed proof of possession.
type IssuanceProof struct {
	Flow    oidc4vci.AuthorizedFlow
	Offered []OfferedCredential
	Proof   string
}

// IssuanceIssued holds a flow with a credential response.
type IssuanceIssued struct {
	Flow    oidc4vci.AuthorizedFlow
	Offered []OfferedCredential
	Proof   string
	Issued  oidc4vci.CredentialResponse
}

func (IssuanceInactive) state()       {}
func (IssuanceOffered) state()        {}
func (IssuanceIssuerMetadata) state() {}
func (IssuanceAccepted) state()       {}
func (IssuanceToken) state()          {}
func (IssuanceProof) state()          {}
func (IssuanceIssued) state()         {}

func (IssuanceInactive) issuance()       {}
func (IssuanceOffered) issuance()        {}
func (IssuanceIssuerMetadata) issuance() {}
func (IssuanceAccepted) issuance()       {}
func (IssuanceToken) issuance()          {}
func (IssuanceProof) issuance()          {}
func (IssuanceIssued) issuance()         {}

// ScanIssuanceOffer starts waiting for an offer.
func (m Model) ScanIssuanceOffer() Model {
	return Model{
		ActiveView: AspectIssuanceScan,
		State:      IssuanceInactive{},
	}
}

// IssuanceOffer decodes a URL-encoded offer. Only offers with a pre-authorized code grant are
// accepted.
func (m Model) IssuanceOffer(encoded string) (Model, error) {
	offer, err := oidc4vci.ParseCredentialOffer(encoded)
	if err != nil {
		return Model{}, err
	}

	grant, ok := offer.PreAuthorizedCode()
	if !ok {
		return Model{}, fmt.Errorf("%w: grant other than pre-authorized code is not supported",
			oidc4vci.ErrInvalidRequest)
	}

	return m.withIssuance(m.ActiveView, IssuanceOffered{Offer: offer, Grant: grant}), nil
}

// ApplyIssuerMetadata starts the flow once the issuer metadata has been fetched. Offered
// configurations the issuer does not support are dropped.
func (m Model) ApplyIssuerMetadata(issuer oidc4vci.IssuerMetadata, clientID, subjectID string) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	offered, ok := s.(IssuanceOffered)
	if !ok {
		return Model{}, stateError("unexpected issuance state to apply issuer metadata")
	}

	flow := oidc4vci.NewPendingFlow(clientID, subjectID, issuer, offered.Offer, offered.Grant)

	var creds []OfferedCredential

	for _, id := range offered.Offer.CredentialConfigurationIDs {
		if cfg, found := issuer.CredentialConfigurationsSupported[id]; found {
			creds = append(creds, OfferedCredential{ConfigID: id, Config: cfg})
		}
	}

	return m.withIssuance(AspectIssuanceOffer, IssuanceIssuerMetadata{
		Flow:    flow,
		Offered: cloneOffered(creds),
	}), nil
}

// ApplyLogo attaches the logo of the first offered credential.
func (m Model) ApplyLogo(data []byte, mediaType string) (Model, error) {
	return m.applyImage("unexpected issuance state to apply logo", func(c *OfferedCredential) {
		c.Logo = credential.NewImageData(data, mediaType)
	})
}

// ApplyBackground attaches the background image of the first offered credential.
func (m Model) ApplyBackground(data []byte, mediaType string) (Model, error) {
	return m.applyImage("unexpected issuance state to apply background", func(c *OfferedCredential) {
		c.Background = credential.NewImageData(data, mediaType)
	})
}

func (m Model) applyImage(unexpected string, apply func(c *OfferedCredential)) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	meta, ok := s.(IssuanceIssuerMetadata)
	if !ok {
		return Model{}, stateError(unexpected)
	}

	if len(meta.Offered) == 0 {
		return m, nil
	}

	offered := cloneOffered(meta.Offered)
	apply(&offered[0])

	return m.withIssuance(m.ActiveView, IssuanceIssuerMetadata{
		Flow:    meta.Flow,
		Offered: offered,
	}), nil
}

// Accept accepts the whole offer without a PIN. Accepting twice is a no-op.
func (m Model) Accept() (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	switch st := s.(type) {
	case IssuanceAccepted:
		return m, nil
	case IssuanceIssuerMetadata:
		return m.withIssuance(m.ActiveView, IssuanceAccepted{
			Flow:    st.Flow.Accept(nil, ""),
			Offered: cloneOffered(st.Offered),
		}), nil
	default:
		return Model{}, stateError("unexpected issuance state to accept offer")
	}
}

// NeedsPIN reports whether the accepted offer requires a transaction code not entered yet.
func (m Model) NeedsPIN() bool {
	accepted, ok := m.State.(IssuanceAccepted)
	if !ok || accepted.Flow.PIN() != "" {
		return false
	}

	return accepted.Flow.Grant().TxCode != nil
}

// ApplyPIN records the transaction code entered by the holder.
func (m Model) ApplyPIN(pin string) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	accepted, ok := s.(IssuanceAccepted)
	if !ok {
		return Model{}, stateError("unexpected issuance state to add PIN")
	}

	return m.withIssuance(m.ActiveView, IssuanceAccepted{
		Flow:    accepted.Flow.WithPIN(pin),
		Offered: cloneOffered(accepted.Offered),
	}), nil
}

// TokenRequest builds the token request of the accepted flow.
func (m Model) TokenRequest() (oidc4vci.TokenRequest, error) {
	s, err := m.issuanceState()
	if err != nil {
		return oidc4vci.TokenRequest{}, err
	}

	accepted, ok := s.(IssuanceAccepted)
	if !ok {
		return oidc4vci.TokenRequest{}, stateError("unexpected issuance state to get token request")
	}

	return accepted.Flow.TokenRequest(), nil
}

// ApplyToken records the token response.
func (m Model) ApplyToken(token oidc4vci.TokenResponse) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	accepted, ok := s.(IssuanceAccepted)
	if !ok {
		return Model{}, stateError("unexpected issuance state to add token")
	}

	return m.withIssuance(m.ActiveView, IssuanceToken{
		Flow:    accepted.Flow.Token(token),
		Offered: cloneOffered(accepted.Offered),
	}), nil
}

// ProofClaims returns the claims of the proof of possession JWT.
func (m Model) ProofClaims(now time.Time) (oidc4vci.ProofClaims, error) {
	s, err := m.issuanceState()
	if err != nil {
		return oidc4vci.ProofClaims{}, err
	}

	token, ok := s.(IssuanceToken)
	if !ok {
		return oidc4vci.ProofClaims{}, stateError("unexpected issuance state to get proof claims")
	}

	return token.Flow.ProofClaims(now), nil
}

// ApplyProof records the signed proof of possession.
func (m Model) ApplyProof(proofJWT string) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	token, ok := s.(IssuanceToken)
	if !ok {
		return Model{}, stateError("unexpected issuance state to add proof")
	}

	return m.withIssuance(m.ActiveView, IssuanceProof{
		Flow:    token.Flow,
		Offered: cloneOffered(token.Offered),
		Proof:   proofJWT,
	}), nil
}

// CredentialRequest builds the request for the first credential identifier the issuer
// authorized, returning it with its credential configuration id.
func (m Model) CredentialRequest(proofJWT string) (string, oidc4vci.CredentialRequest, error) {
	s, err := m.issuanceState()
	if err != nil {
		return "", oidc4vci.CredentialRequest{}, err
	}

	p, ok := s.(IssuanceProof)
	if !ok {
		return "", oidc4vci.CredentialRequest{},
			stateError("unexpected issuance state to get authorization details")
	}

	details := p.Flow.Token().AuthorizationDetails
	if details == nil {
		return "", oidc4vci.CredentialRequest{},
			fmt.Errorf("%w: no authorized details in token response", oidc4vci.ErrInvalidRequest)
	}

	if len(details) == 0 {
		return "", oidc4vci.CredentialRequest{},
			fmt.Errorf("%w: empty authorized details in token response", oidc4vci.ErrInvalidRequest)
	}

	if len(details[0].CredentialIdentifiers) == 0 {
		return "", oidc4vci.CredentialRequest{},
			fmt.Errorf("%w: empty credential identifiers in authorized details", oidc4vci.ErrInvalidRequest)
	}

	requests := p.Flow.CredentialRequests(details[0].CredentialIdentifiers[:1], proofJWT)

	configID := requests[0].ConfigID
	if configID == "" {
		configID = details[0].CredentialConfigurationID
	}

	return configID, requests[0].Request, nil
}

// AccessToken returns the access token once the token response is known.
func (m Model) AccessToken() (string, error) {
	s, err := m.issuanceState()
	if err != nil {
		return "", err
	}

	switch st := s.(type) {
	case IssuanceToken:
		return st.Flow.Token().AccessToken, nil
	case IssuanceProof:
		return st.Flow.Token().AccessToken, nil
	case IssuanceIssued:
		return st.Flow.Token().AccessToken, nil
	default:
		return "", stateError("unexpected issuance state to get access token")
	}
}

// ApplyIssued records the credential response.
func (m Model) ApplyIssued(resp oidc4vci.CredentialResponse) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	p, ok := s.(IssuanceProof)
	if !ok {
		return Model{}, stateError("unexpected issuance state to add credential response")
	}

	return m.withIssuance(m.ActiveView, IssuanceIssued{
		Flow:    p.Flow,
		Offered: cloneOffered(p.Offered),
		Proof:   p.Proof,
		Issued:  cloneResponse(resp),
	}), nil
}

// AddCredential records the verified credential against the first offered configuration.
// Multi-credential and deferred responses are not supported.
func (m Model) AddCredential(vc credential.VerifiableCredential, issuedAt int64) (Model, error) {
	s, err := m.issuanceState()
	if err != nil {
		return Model{}, err
	}

	issued, ok := s.(IssuanceIssued)
	if !ok {
		return Model{}, stateError("unexpected issuance state to add credential")
	}

	if issued.Issued.Type() != oidc4vci.ResponseCredential {
		return Model{}, fmt.Errorf("%w: unexpected credential response type", oidc4vci.ErrUnsupported)
	}

	vcJWT, err := issued.Issued.CredentialJWT()
	if err != nil {
		return Model{}, err
	}

	if len(issued.Offered) == 0 {
		return Model{}, errors.New("no offered credential to add credential")
	}

	offered := issued.Offered[0]

	flow, err := issued.Flow.AddCredential(vc, vcJWT, issuedAt, offered.ConfigID, offered.Logo, offered.Background)
	if err != nil {
		return Model{}, err
	}

	return m.withIssuance(m.ActiveView, IssuanceIssued{
		Flow:    flow,
		Offered: cloneOffered(issued.Offered),
		Proof:   issued.Proof,
		Issued:  cloneResponse(issued.Issued),
	}), nil
}

// StorableCredential returns the first credential added to the flow.
func (m Model) StorableCredential() (credential.Credential, error) {
	s, err := m.issuanceState()
	if err != nil {
		return credential.Credential{}, err
	}

	issued, ok := s.(IssuanceIssued)
	if !ok {
		return credential.Credential{}, stateError("unexpected issuance state to get storable credential")
	}

	creds := issued.Flow.Credentials()
	if len(creds) == 0 {
		return credential.Credential{}, errors.New("no credential in issuance flow")
	}

	return creds[0], nil
}

// Issuer returns the issuer metadata once it is known.
func (m Model) Issuer() (oidc4vci.IssuerMetadata, bool) {
	switch st := m.State.(type) {
	case IssuanceIssuerMetadata:
		return st.Flow.Issuer(), true
	case IssuanceAccepted:
		return st.Flow.Issuer(), true
	case IssuanceToken:
		return st.Flow.Issuer(), true
	case IssuanceProof:
		return st.Flow.Issuer(), true
	case IssuanceIssued:
		return st.Flow.Issuer(), true
	default:
		return oidc4vci.IssuerMetadata{}, false
	}
}

// OfferedCredential returns the first offered credential while the flow has not been issued.
func (m Model) OfferedCredential() (OfferedCredential, bool) {
	var offered []OfferedCredential

	switch st := m.State.(type) {
	case IssuanceIssuerMetadata:
		offered = st.Offered
	case IssuanceAccepted:
		offered = st.Offered
	case IssuanceToken:
		offered = st.Offered
	case IssuanceProof:
		offered = st.Offered
	}

	if len(offered) == 0 {
		return OfferedCredential{}, false
	}

	return cloneOffered(offered[:1])[0], true
}

// IssuedResponse returns the credential response once received.
func (m Model) IssuedResponse() (oidc4vci.CredentialResponse, bool) {
	issued, ok := m.State.(IssuanceIssued)
	if !ok {
		return oidc4vci.CredentialResponse{}, false
	}

	return cloneResponse(issued.Issued), true
}

func (m Model) withIssuance(aspect Aspect, s IssuanceState) Model {
	return Model{ActiveView: aspect, State: s}
}

func cloneOffered(offered []OfferedCredential) []OfferedCredential {
	if offered == nil {
		return nil
	}

	out := make([]OfferedCredential, 0, len(offered))

	for i := range offered {
		var c OfferedCredential
		if err := copier.CopyWithOption(&c, &offered[i], copier.Option{DeepCopy: true}); err != nil {
			c = offered[i]
		}

		out = append(out, c)
	}

	return out
}

func cloneResponse(r oidc4vci.CredentialResponse) oidc4vci.CredentialResponse {
	out := r
	out.Credential = append([]byte(nil), r.Credential...)
	out.Credentials = lo.Map(r.Credentials, func(c json.RawMessage, _ int) json.RawMessage {
		return append(json.RawMessage(nil), c...)
	})

	if r.Credentials == nil {
		out.Credentials = nil
	}

	if r.Credential == nil {
		out.Credential = nil
	}

	return out
}
