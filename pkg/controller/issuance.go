/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	ariesdid "github.com/hyperledger/aries-framework-go/component/models/did"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/did"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
	"github.com/trustbloc/wallet/pkg/proof"
	"github.com/trustbloc/wallet/pkg/signer"
)

const (
	contentTypeHeader = "Content-Type"
	acceptHeader      = "Accept"
	mimeJSON          = "application/json"
	mimeForm          = "application/x-www-form-urlencoded"
)

func issuanceEvent(event Event, m model.Model, cfg *Config) (model.Model, Command) {
	switch e := event.(type) {
	case ScanOffer:
		return m.ScanIssuanceOffer(), Render{}
	case Offer:
		return offer(e.Encoded, m)
	case IssuerReceived:
		return issuerReceived(e, m, cfg)
	case LogoReceived:
		return imageReceived(e.Response, e.Err, m, "logo request failed", m.ApplyLogo)
	case BackgroundReceived:
		return imageReceived(e.Response, e.Err, m, "background image request failed", m.ApplyBackground)
	case OfferAccepted:
		return accepted(m)
	case PINEntered:
		next, err := m.ApplyPIN(e.PIN)
		if err != nil {
			return failErr(m, err)
		}

		return requestToken(next)
	case TokenReceived:
		return tokenReceived(e, m)
	case IssuanceSigningKey:
		return issuanceSigningKey(e, m, cfg)
	case ProofCreated:
		return proofCreated(e.JWT, m)
	case CredentialReceived:
		return credentialReceived(e, m)
	case IssuerDIDResolved:
		return issuerDIDResolved(e, m)
	case CredentialVerified:
		return credentialVerified(e, m)
	case IssuanceStored:
		if e.Err != nil {
			return failErr(m, e.Err)
		}

		return reset(m)
	case IssuanceCancelled:
		return reset(m)
	}

	return m, None{}
}

func offer(encoded string, m model.Model) (model.Model, Command) {
	next, err := m.IssuanceOffer(encoded)
	if err != nil {
		return failErr(m, err)
	}

	s, _ := next.State.(model.IssuanceOffered)

	return next, batch(Render{}, get(s.Offer.CredentialIssuer+oidc4vci.WellKnownPath,
		func(resp HTTPResponse, err error) Event {
			return IssuerReceived{Response: resp, Err: err}
		}))
}

func issuerReceived(e IssuerReceived, m model.Model, cfg *Config) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	if !e.Response.IsSuccess() {
		return fail(m, "issuer metadata request failed")
	}

	var issuer oidc4vci.IssuerMetadata
	if err := json.Unmarshal(e.Response.Body, &issuer); err != nil {
		return fail(m, "issuer metadata deserialization failed")
	}

	next, err := m.ApplyIssuerMetadata(issuer, cfg.ClientID, cfg.SubjectID)
	if err != nil {
		return failErr(m, err)
	}

	commands := []Command{Render{}}

	if offered, ok := next.OfferedCredential(); ok {
		if u := offered.LogoURL(); u != "" {
			commands = append(commands, get(u, func(resp HTTPResponse, err error) Event {
				return LogoReceived{Response: resp, Err: err}
			}))
		}

		if u := offered.BackgroundURL(); u != "" {
			commands = append(commands, get(u, func(resp HTTPResponse, err error) Event {
				return BackgroundReceived{Response: resp, Err: err}
			}))
		}
	}

	return next, batch(commands...)
}

// imageReceived attaches a display image to the offered credential.
func imageReceived(
	resp HTTPResponse,
	fetchErr error,
	m model.Model,
	failed string,
	apply func(data []byte, mediaType string) (model.Model, error),
) (model.Model, Command) {
	if fetchErr != nil {
		return failErr(m, fetchErr)
	}

	if !resp.IsSuccess() {
		return fail(m, failed)
	}

	mediaType := resp.Header.Get(contentTypeHeader)
	if mediaType == "" {
		mediaType = http.DetectContentType(resp.Body)
	}

	next, err := apply(resp.Body, mediaType)
	if err != nil {
		return failErr(m, err)
	}

	return next, Render{}
}

func accepted(m model.Model) (model.Model, Command) {
	next, err := m.Accept()
	if err != nil {
		return failErr(m, err)
	}

	if next.NeedsPIN() {
		return next.WithActiveView(model.AspectIssuancePin), Render{}
	}

	return requestToken(next)
}

func requestToken(m model.Model) (model.Model, Command) {
	req, err := m.TokenRequest()
	if err != nil {
		return failErr(m, err)
	}

	issuer, ok := m.Issuer()
	if !ok {
		return fail(m, "issuer metadata is missing")
	}

	form, err := req.Form()
	if err != nil {
		return fail(m, "failed to encode token request form")
	}

	return m, HTTP{
		Request: HTTPRequest{
			Method: http.MethodPost,
			URL:    issuer.TokenURL(),
			Header: http.Header{contentTypeHeader: {mimeForm}, acceptHeader: {mimeJSON}},
			Body:   []byte(form.Encode()),
		},
		Then: func(resp HTTPResponse, err error) Event {
			return TokenReceived{Response: resp, Err: err}
		},
	}
}

func tokenReceived(e TokenReceived, m model.Model) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	if !e.Response.IsSuccess() {
		return fail(m, protocolError("token request failed", e.Response.Body))
	}

	var token oidc4vci.TokenResponse
	if err := json.Unmarshal(e.Response.Body, &token); err != nil {
		return fail(m, "token response deserialization failed")
	}

	next, err := m.ApplyToken(token)
	if err != nil {
		return failErr(m, err)
	}

	return next, KeyStoreGet{
		ID:      SigningKeyID,
		Purpose: SigningKeyPurpose,
		Then: func(key []byte, err error) Event {
			return IssuanceSigningKey{Key: key, Err: err}
		},
	}
}

func issuanceSigningKey(e IssuanceSigningKey, m model.Model, cfg *Config) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	s, err := signer.New(e.Key)
	if err != nil {
		return failErr(m, err)
	}

	claims, err := m.ProofClaims(cfg.now())
	if err != nil {
		return failErr(m, err)
	}

	return m, Task{
		Name: "create proof",
		Run: func(context.Context) Event {
			jws, signErr := proof.CreateProofJWT(claims, s)
			if signErr != nil {
				return ErrorOccurred{Message: signErr.Error()}
			}

			return ProofCreated{JWT: jws}
		},
	}
}

func proofCreated(proofJWT string, m model.Model) (model.Model, Command) {
	next, err := m.ApplyProof(proofJWT)
	if err != nil {
		return failErr(m, err)
	}

	_, req, err := next.CredentialRequest(proofJWT)
	if err != nil {
		return failErr(m, err)
	}

	accessToken, err := next.AccessToken()
	if err != nil {
		return failErr(m, err)
	}

	issuer, ok := next.Issuer()
	if !ok {
		return fail(m, "issuer metadata is missing")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fail(m, "failed to encode credential request")
	}

	return next, HTTP{
		Request: HTTPRequest{
			Method: http.MethodPost,
			URL:    issuer.CredentialURL(),
			Header: http.Header{
				contentTypeHeader: {mimeJSON},
				acceptHeader:      {mimeJSON},
				"Authorization":   {"Bearer " + accessToken},
			},
			Body: body,
		},
		Then: func(resp HTTPResponse, err error) Event {
			return CredentialReceived{Response: resp, Err: err}
		},
	}
}

func credentialReceived(e CredentialReceived, m model.Model) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	if !e.Response.IsSuccess() {
		return fail(m, protocolError("credential request failed", e.Response.Body))
	}

	var resp oidc4vci.CredentialResponse
	if err := json.Unmarshal(e.Response.Body, &resp); err != nil {
		return fail(m, "credential response deserialization failed")
	}

	next, err := m.ApplyIssued(resp)
	if err != nil {
		return failErr(m, err)
	}

	vcJWT, err := resp.CredentialJWT()
	if err != nil {
		return failErr(next, err)
	}

	return resolveSigner(next, vcJWT, "expected key ID in credential",
		func(resp HTTPResponse, err error) Event { return IssuerDIDResolved{Response: resp, Err: err} },
		verifyCredential)
}

func issuerDIDResolved(e IssuerDIDResolved, m model.Model) (model.Model, Command) {
	doc, msg := didDocument(e.Response, e.Err)
	if msg != "" {
		return fail(m, msg)
	}

	resp, ok := m.IssuedResponse()
	if !ok {
		return fail(m, "unable to retrieve credential response from model")
	}

	vcJWT, err := resp.CredentialJWT()
	if err != nil {
		return failErr(m, err)
	}

	return m, verifyCredential(vcJWT, func() (*did.FixedResolver, error) {
		return did.NewFixedResolver(doc), nil
	})
}

func verifyCredential(vcJWT string, resolver func() (*did.FixedResolver, error)) Command {
	return Task{
		Name: "verify credential",
		Run: func(context.Context) Event {
			r, err := resolver()
			if err != nil {
				return ErrorOccurred{Message: err.Error()}
			}

			vc, issuedAt, err := proof.VerifyCredential(vcJWT, r)
			if err != nil {
				return ErrorOccurred{Message: err.Error()}
			}

			return CredentialVerified{VC: vc, IssuedAt: issuedAt}
		},
	}
}

func credentialVerified(e CredentialVerified, m model.Model) (model.Model, Command) {
	next, err := m.AddCredential(e.VC, e.IssuedAt)
	if err != nil {
		return failErr(m, err)
	}

	c, err := next.StorableCredential()
	if err != nil {
		return failErr(m, err)
	}

	b, err := json.Marshal(c)
	if err != nil {
		return fail(m, "failed to encode credential")
	}

	return next, StoreSave{
		Catalog: credential.Catalog,
		ID:      c.ID,
		Value:   b,
		Then:    func(err error) Event { return IssuanceStored{Err: err} },
	}
}

// resolveSigner finds the DID document of the key that signed the JWT. did:key documents are
// derived locally inside the verification task; did:web documents are fetched first.
func resolveSigner(
	m model.Model,
	jws, missingKID string,
	resolved func(HTTPResponse, error) Event,
	verify func(jws string, resolver func() (*did.FixedResolver, error)) Command,
) (model.Model, Command) {
	kid, err := proof.KeyID(jws)
	if err != nil {
		if errors.Is(err, proof.ErrMissingKeyID) {
			return fail(m, missingKID)
		}

		return failErr(m, err)
	}

	didID, _, err := did.SplitKeyID(kid)
	if err != nil {
		return failErr(m, err)
	}

	if did.IsKey(didID) {
		return m, verify(jws, func() (*did.FixedResolver, error) {
			doc, resolveErr := did.ResolveKey(didID)
			if resolveErr != nil {
				return nil, resolveErr
			}

			return did.NewFixedResolver(doc), nil
		})
	}

	u, err := did.WebURL(didID)
	if err != nil {
		return failErr(m, err)
	}

	return m, get(u, resolved)
}

func didDocument(resp HTTPResponse, fetchErr error) (*ariesdid.Doc, string) {
	if fetchErr != nil {
		return nil, fetchErr.Error()
	}

	if !resp.IsSuccess() {
		return nil, "DID document request failed"
	}

	if len(resp.Body) == 0 {
		return nil, "no DID document returned"
	}

	doc, err := did.ParseDocument(resp.Body)
	if err != nil {
		return nil, "DID document deserialization failed"
	}

	if _, err = did.VerificationMethods(doc, ariesdid.AssertionMethod); err != nil {
		return nil, err.Error()
	}

	return doc, ""
}

// protocolError adds the OAuth error of a failed response to the message when there is one.
func protocolError(message string, body []byte) string {
	r := gjson.ParseBytes(body)

	desc := r.Get("error_description").String()
	if desc == "" {
		desc = r.Get("error").String()
	}

	if desc == "" {
		return message
	}

	return fmt.Sprintf("%s: %s", message, desc)
}
