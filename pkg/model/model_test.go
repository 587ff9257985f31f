/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/internal/testutil"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
)

const (
	issuerURL = "https://issuer.example.com"
	clientID  = "wallet-client"
	subjectID = "holder"
)

func withMetadata(t *testing.T, withTxCode bool) model.Model {
	t.Helper()

	m, err := model.New().ScanIssuanceOffer().IssuanceOffer(
		testutil.Offer(t, issuerURL, withTxCode, testutil.EmployeeConfigID, "Unknown_JWT"))
	require.NoError(t, err)

	m, err = m.ApplyIssuerMetadata(testutil.IssuerMetadata(issuerURL), clientID, subjectID)
	require.NoError(t, err)

	return m
}

func withProof(t *testing.T) model.Model {
	t.Helper()

	m, err := withMetadata(t, false).Accept()
	require.NoError(t, err)

	m, err = m.ApplyToken(testutil.TokenResponse())
	require.NoError(t, err)

	m, err = m.ApplyProof("proof.jwt")
	require.NoError(t, err)

	return m
}

func withIssued(t *testing.T, resp oidc4vci.CredentialResponse) model.Model {
	t.Helper()

	m, err := withProof(t).ApplyIssued(resp)
	require.NoError(t, err)

	return m
}

func employeeVC() credential.VerifiableCredential {
	return credential.VerifiableCredential{
		ID:                "urn:uuid:employee-1",
		Type:              []string{"VerifiableCredential", "EmployeeIDCredential"},
		Issuer:            json.RawMessage(`"did:web:issuer.example.com"`),
		CredentialSubject: json.RawMessage(`{"id":"did:key:holder","givenName":"Normal"}`),
	}
}

func TestModel_Defaults(t *testing.T) {
	m := model.New()
	assert.Equal(t, model.AspectCredentialList, m.ActiveView)
	assert.Equal(t, model.CredentialState{}, m.State)

	e := m.Error("boom")
	assert.Equal(t, model.AspectError, e.ActiveView)
	assert.Equal(t, model.ErrorState{Message: "boom"}, e.State)

	assert.Equal(t, model.New(), e.Ready())
	assert.Equal(t, model.AspectIssuancePin, m.WithActiveView(model.AspectIssuancePin).ActiveView)
}

func TestModel_Credentials(t *testing.T) {
	creds := []credential.Credential{{ID: "1"}, {ID: "2"}}

	m := model.New().Error("x").CredentialsLoaded(creds)
	creds[0].ID = "changed"

	require.Equal(t, model.AspectCredentialList, m.ActiveView)
	assert.Equal(t, "1", m.State.(model.CredentialState).Credentials[0].ID)

	selected := m.SelectCredential("2")
	assert.Equal(t, model.AspectCredentialDetail, selected.ActiveView)
	assert.Equal(t, "2", selected.State.(model.CredentialState).ID)
	assert.Len(t, selected.State.(model.CredentialState).Credentials, 2)

	assert.Equal(t, model.New(), model.New().ScanIssuanceOffer().SelectCredential("2"))
}

func TestModel_IssuanceOffer(t *testing.T) {
	t.Run("pre-authorized", func(t *testing.T) {
		m, err := model.New().ScanIssuanceOffer().IssuanceOffer(
			testutil.Offer(t, issuerURL, true, testutil.EmployeeConfigID))
		require.NoError(t, err)

		assert.Equal(t, model.AspectIssuanceScan, m.ActiveView)

		offered, ok := m.State.(model.IssuanceOffered)
		require.True(t, ok)
		assert.Equal(t, issuerURL, offered.Offer.CredentialIssuer)
		assert.Equal(t, testutil.PreAuthorizedCode, offered.Grant.PreAuthorizedCode)
	})

	t.Run("authorization code only", func(t *testing.T) {
		_, err := model.New().IssuanceOffer(
			`credential_issuer=https%3A%2F%2Fissuer.example.com&credential_configuration_ids=%5B%22A%22%5D` +
				`&grants=%7B%22authorization_code%22%3A%7B%22issuer_state%22%3A%22s%22%7D%7D`)
		require.ErrorIs(t, err, oidc4vci.ErrInvalidRequest)
		assert.Contains(t, err.Error(), "grant other than pre-authorized code is not supported")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := model.New().IssuanceOffer("credential_issuer=%zz")
		require.Error(t, err)
	})
}

func TestModel_ApplyIssuerMetadata(t *testing.T) {
	m := withMetadata(t, true)
	assert.Equal(t, model.AspectIssuanceOffer, m.ActiveView)

	meta, ok := m.State.(model.IssuanceIssuerMetadata)
	require.True(t, ok)
	require.Len(t, meta.Offered, 1)
	assert.Equal(t, testutil.EmployeeConfigID, meta.Offered[0].ConfigID)
	assert.Equal(t, clientID, meta.Flow.ClientID())

	issuer, ok := m.Issuer()
	require.True(t, ok)
	assert.Equal(t, issuerURL, issuer.CredentialIssuer)

	_, err := m.ApplyIssuerMetadata(testutil.IssuerMetadata(issuerURL), clientID, subjectID)
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected issuance state to apply issuer metadata")

	_, err = model.New().ApplyIssuerMetadata(testutil.IssuerMetadata(issuerURL), clientID, subjectID)
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "not in issuance state")
}

func TestModel_Images(t *testing.T) {
	m := withMetadata(t, false)

	offered, ok := m.OfferedCredential()
	require.True(t, ok)
	assert.Equal(t, issuerURL+"/logo.png", offered.LogoURL())
	assert.Equal(t, issuerURL+"/background.png", offered.BackgroundURL())

	next, err := m.ApplyLogo([]byte("logo"), "image/png")
	require.NoError(t, err)

	next, err = next.ApplyBackground([]byte("bg"), "image/jpeg")
	require.NoError(t, err)

	offered, ok = next.OfferedCredential()
	require.True(t, ok)
	assert.Empty(t, offered.LogoURL())
	assert.Empty(t, offered.BackgroundURL())
	assert.Equal(t, &credential.ImageData{Data: "bG9nbw==", MediaType: "image/png"}, offered.Logo)
	assert.Equal(t, &credential.ImageData{Data: "Ymc=", MediaType: "image/jpeg"}, offered.Background)

	original, _ := m.OfferedCredential()
	assert.Nil(t, original.Logo)

	accepted, err := next.Accept()
	require.NoError(t, err)

	_, err = accepted.ApplyLogo([]byte("logo"), "image/png")
	require.ErrorIs(t, err, model.ErrUnexpectedState)
}

func TestModel_ImagesWithoutOfferedCredential(t *testing.T) {
	m, err := model.New().IssuanceOffer(testutil.Offer(t, issuerURL, false, "Unknown_JWT"))
	require.NoError(t, err)

	m, err = m.ApplyIssuerMetadata(testutil.IssuerMetadata(issuerURL), clientID, subjectID)
	require.NoError(t, err)

	next, err := m.ApplyLogo([]byte("logo"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, m, next)

	_, ok := next.OfferedCredential()
	assert.False(t, ok)
}

func TestModel_NeedsPIN(t *testing.T) {
	tests := []struct {
		name   string
		txCode bool
		accept bool
		pin    string
		want   bool
	}{
		{name: "not accepted", txCode: true},
		{name: "accepted without tx_code", accept: true},
		{name: "accepted with tx_code", txCode: true, accept: true, want: true},
		{name: "pin entered", txCode: true, accept: true, pin: "123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withMetadata(t, tt.txCode)

			var err error

			if tt.accept {
				m, err = m.Accept()
				require.NoError(t, err)
			}

			if tt.pin != "" {
				m, err = m.ApplyPIN(tt.pin)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, m.NeedsPIN())
		})
	}
}

func TestModel_AcceptAndToken(t *testing.T) {
	m := withMetadata(t, true)

	_, err := m.ApplyPIN("123456")
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	_, err = m.TokenRequest()
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	accepted, err := m.Accept()
	require.NoError(t, err)

	again, err := accepted.Accept()
	require.NoError(t, err)
	assert.Equal(t, accepted, again)

	accepted, err = accepted.ApplyPIN("123456")
	require.NoError(t, err)

	req, err := accepted.TokenRequest()
	require.NoError(t, err)
	assert.Equal(t, oidc4vci.PreAuthorizedCodeGrantType, req.GrantType)
	assert.Equal(t, testutil.PreAuthorizedCode, req.PreAuthorizedCode)
	assert.Equal(t, "123456", req.TxCode)
	assert.Equal(t, clientID, req.ClientID)
	assert.Empty(t, req.AuthorizationDetails)

	_, err = accepted.AccessToken()
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	token, err := accepted.ApplyToken(testutil.TokenResponse())
	require.NoError(t, err)

	at, err := token.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "access-token", at)

	now := time.Unix(1700000000, 0)

	claims, err := token.ProofClaims(now)
	require.NoError(t, err)
	assert.Equal(t, clientID, claims.Issuer)
	assert.Equal(t, issuerURL, claims.Audience)
	assert.Equal(t, "c-nonce", claims.Nonce)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Time().Unix())

	_, err = token.Accept()
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected issuance state to accept offer")
}

func TestModel_CredentialRequest(t *testing.T) {
	m := withProof(t)

	_, err := m.ProofClaims(time.Now())
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	configID, req, err := m.CredentialRequest("proof.jwt")
	require.NoError(t, err)
	assert.Equal(t, testutil.EmployeeConfigID, configID)
	assert.Equal(t, "EmployeeID2023", req.CredentialIdentifier)
	require.NotNil(t, req.Proof)
	assert.Equal(t, oidc4vci.ProofTypeJWT, req.Proof.ProofType)
	assert.Equal(t, "proof.jwt", req.Proof.JWT)

	at, err := m.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "access-token", at)

	tests := []struct {
		name    string
		details []oidc4vci.AuthorizationDetail
		msg     string
	}{
		{name: "no details", details: nil, msg: "no authorized details in token response"},
		{name: "empty details", details: []oidc4vci.AuthorizationDetail{}, msg: "empty authorized details"},
		{
			name:    "no identifiers",
			details: []oidc4vci.AuthorizationDetail{{Type: oidc4vci.AuthorizationDetailsType}},
			msg:     "empty credential identifiers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := testutil.TokenResponse()
			token.AuthorizationDetails = tt.details

			accepted, acceptErr := withMetadata(t, false).Accept()
			require.NoError(t, acceptErr)

			next, tokenErr := accepted.ApplyToken(token)
			require.NoError(t, tokenErr)

			next, proofErr := next.ApplyProof("proof.jwt")
			require.NoError(t, proofErr)

			_, _, reqErr := next.CredentialRequest("proof.jwt")
			require.ErrorIs(t, reqErr, oidc4vci.ErrInvalidRequest)
			assert.Contains(t, reqErr.Error(), tt.msg)
		})
	}
}

func TestModel_AddCredential(t *testing.T) {
	resp := oidc4vci.CredentialResponse{Credential: json.RawMessage(`"header.payload.signature"`)}

	m := withIssued(t, resp)

	issued, ok := m.IssuedResponse()
	require.True(t, ok)
	assert.Equal(t, oidc4vci.ResponseCredential, issued.Type())

	_, ok = m.OfferedCredential()
	assert.False(t, ok)

	_, err := m.StorableCredential()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credential in issuance flow")

	next, err := m.AddCredential(employeeVC(), 1704164645)
	require.NoError(t, err)

	c, err := next.StorableCredential()
	require.NoError(t, err)
	assert.Equal(t, "urn:uuid:employee-1", c.ID)
	assert.Equal(t, testutil.EmployeeConfigID, c.ConfigID)
	assert.Equal(t, "header.payload.signature", c.Issued)
	assert.Equal(t, "Example Issuer", c.IssuerName)
	assert.Equal(t, time.Unix(1704164645, 0).UTC(), c.IssuanceDate)
	require.NotNil(t, c.Display)
	assert.Equal(t, "Employee ID", c.Display.Name)

	_, err = withProof(t).AddCredential(employeeVC(), 1)
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected issuance state to add credential")
}

func TestModel_AddCredentialUnsupportedResponse(t *testing.T) {
	tests := []struct {
		name string
		resp oidc4vci.CredentialResponse
	}{
		{
			name: "multiple credentials",
			resp: oidc4vci.CredentialResponse{Credentials: []json.RawMessage{json.RawMessage(`"a.b.c"`)}},
		},
		{
			name: "deferred",
			resp: oidc4vci.CredentialResponse{TransactionID: "tx-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withIssued(t, tt.resp)

			_, err := m.AddCredential(employeeVC(), 1)
			require.ErrorIs(t, err, oidc4vci.ErrUnsupported)

			_, err = m.StorableCredential()
			require.Error(t, err)
		})
	}
}

func TestModel_Presentation(t *testing.T) {
	const (
		verifierDID = "did:web:verifier.example.com"
		responseURI = "https://verifier.example.com/post/"
	)

	creds := []credential.Credential{{ID: "c1", Issued: "vc.jwt"}}

	m := model.New().ScanPresentationRequest()
	assert.Equal(t, model.AspectPresentationScan, m.ActiveView)

	_, ok := m.PresentationRequestPayload()
	assert.False(t, ok)

	_, err := m.PresentationVerified(testutil.RequestObject(verifierDID, responseURI))
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected presentation state to apply verified request")

	m, err = m.PresentationRequest("request.jwt")
	require.NoError(t, err)

	_, err = m.PresentationRequest("again.jwt")
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected presentation state to apply request")

	payload, ok := m.PresentationRequestPayload()
	require.True(t, ok)
	assert.Equal(t, "request.jwt", payload)

	_, err = m.PresentationFilter()
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	m, err = m.PresentationVerified(testutil.RequestObject(verifierDID, responseURI))
	require.NoError(t, err)

	filter, err := m.PresentationFilter()
	require.NoError(t, err)
	require.Len(t, filter.Fields, 1)

	_, err = m.PresentationApprove()
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "unexpected presentation state to approve")

	m, err = m.PresentationCredentials(creds)
	require.NoError(t, err)
	assert.Equal(t, model.AspectPresentationRequest, m.ActiveView)

	_, err = m.PresentationPayload("did:key:z6Mk#z6Mk")
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	m, err = m.PresentationApprove()
	require.NoError(t, err)

	vp, err := m.PresentationPayload("did:key:z6Mk#z6Mk")
	require.NoError(t, err)
	assert.Equal(t, "did:key:z6Mk", vp.VP.Holder)
	assert.Equal(t, []string{"vc.jwt"}, vp.VP.VerifiableCredential)
	assert.Equal(t, verifierDID, vp.ClientID)

	req, uri, ok, err := m.PresentationResponse("vp.jwt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://verifier.example.com/post", uri)
	assert.Equal(t, []string{"vp.jwt"}, req.VPToken)
	assert.Equal(t, "request-state", req.State)

	_, err = m.PresentationApprove()
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	done, err := m.PresentationSucceeded()
	require.NoError(t, err)
	assert.Equal(t, model.AspectPresentationSuccess, done.ActiveView)

	_, err = model.New().PresentationSucceeded()
	require.ErrorIs(t, err, model.ErrUnexpectedState)

	_, _, _, err = model.New().PresentationResponse("vp.jwt")
	require.ErrorIs(t, err, model.ErrUnexpectedState)
	assert.EqualError(t, err, "not in presentation state")
}

func TestModel_PresentationDefinitionByReference(t *testing.T) {
	ro := testutil.RequestObject("did:web:verifier.example.com", "")
	ro.PresentationDefinition = nil
	ro.PresentationDefinitionURI = "https://verifier.example.com/pd"

	m, err := model.New().ScanPresentationRequest().PresentationRequest("request.jwt")
	require.NoError(t, err)

	_, err = m.PresentationVerified(ro)
	require.ErrorIs(t, err, oidc4vp.ErrUnsupported)
}
