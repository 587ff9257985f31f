/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/credentialfilter"
	"github.com/trustbloc/wallet/pkg/did"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
	"github.com/trustbloc/wallet/pkg/proof"
	"github.com/trustbloc/wallet/pkg/signer"
)

func presentationEvent(event Event, m model.Model, cfg *Config) (model.Model, Command) {
	switch e := event.(type) {
	case ScanRequest:
		return m.ScanPresentationRequest(), Render{}
	case Request:
		return request(e.URL, m)
	case RequestReceived:
		return requestReceived(e, m)
	case VerifierDIDResolved:
		return verifierDIDResolved(e, m)
	case RequestVerified:
		return requestVerified(e.Request, m)
	case PresentationCredentialsLoaded:
		return presentationCredentialsLoaded(e, m)
	case CredentialsFound:
		return credentialsFound(e.Credentials, m)
	case PresentationApproved:
		next, err := m.PresentationApprove()
		if err != nil {
			return failErr(m, err)
		}

		return next, KeyStoreGet{
			ID:      SigningKeyID,
			Purpose: SigningKeyPurpose,
			Then: func(key []byte, err error) Event {
				return PresentationSigningKey{Key: key, Err: err}
			},
		}
	case PresentationSigningKey:
		return presentationSigningKey(e, m, cfg)
	case PresentationProofCreated:
		return presentationProofCreated(e.JWT, m)
	case VerifierResponded:
		if e.Err != nil {
			return failErr(m, e.Err)
		}

		if !e.Response.IsSuccess() {
			return fail(m, "credential verification failed")
		}

		next, err := m.PresentationSucceeded()
		if err != nil {
			return failErr(m, err)
		}

		return next, Render{}
	case PresentationCancelled:
		return reset(m)
	}

	return m, None{}
}

// request fetches the request object by reference. A request object passed by value is used as
// is, since it carries no signature to verify. Either way any flow in progress is abandoned and
// the model waits for the request.
func request(u string, m model.Model) (model.Model, Command) {
	ro, byValue, err := oidc4vp.ParseRequestObject(u)
	if err != nil {
		return failErr(m, err)
	}

	scanning := m.ScanPresentationRequest()

	if byValue {
		next, reqErr := scanning.PresentationRequest(u)
		if reqErr != nil {
			return failErr(m, reqErr)
		}

		return next, Emit{Event: RequestVerified{Request: *ro}}
	}

	return scanning, get(u, func(resp HTTPResponse, err error) Event {
		return RequestReceived{Response: resp, Err: err}
	})
}

func requestReceived(e RequestReceived, m model.Model) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	if !e.Response.IsSuccess() {
		return fail(m, "presentation request fetch failed")
	}

	if len(e.Response.Body) == 0 {
		return fail(m, "no presentation request returned")
	}

	var resp oidc4vp.RequestObjectResponse
	if err := json.Unmarshal(e.Response.Body, &resp); err != nil {
		return fail(m, "presentation request deserialization failed")
	}

	if resp.RequestObject == "" {
		return fail(m, "expected presentation request as JWT")
	}

	next, err := m.PresentationRequest(resp.RequestObject)
	if err != nil {
		return failErr(m, err)
	}

	return resolveSigner(next, resp.RequestObject,
		"expected key ID in presentation request",
		func(resp HTTPResponse, err error) Event { return VerifierDIDResolved{Response: resp, Err: err} },
		verifyRequest)
}

func verifierDIDResolved(e VerifierDIDResolved, m model.Model) (model.Model, Command) {
	doc, msg := didDocument(e.Response, e.Err)
	if msg != "" {
		return fail(m, msg)
	}

	payload, ok := m.PresentationRequestPayload()
	if !ok {
		return fail(m, "unable to retrieve presentation request from model")
	}

	return m, verifyRequest(payload, func() (*did.FixedResolver, error) {
		return did.NewFixedResolver(doc), nil
	})
}

func verifyRequest(requestJWT string, resolver func() (*did.FixedResolver, error)) Command {
	return Task{
		Name: "verify request object",
		Run: func(context.Context) Event {
			r, err := resolver()
			if err != nil {
				return ErrorOccurred{Message: err.Error()}
			}

			ro, err := proof.VerifyRequestObject(requestJWT, r)
			if err != nil {
				return ErrorOccurred{Message: err.Error()}
			}

			return RequestVerified{Request: ro}
		},
	}
}

func requestVerified(ro oidc4vp.RequestObject, m model.Model) (model.Model, Command) {
	next, err := m.PresentationVerified(ro)
	if err != nil {
		return failErr(m, err)
	}

	return next, StoreList{
		Catalog: credential.Catalog,
		Then: func(entries [][]byte, err error) Event {
			return PresentationCredentialsLoaded{Entries: entries, Err: err}
		},
	}
}

func presentationCredentialsLoaded(e PresentationCredentialsLoaded, m model.Model) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	filter, err := m.PresentationFilter()
	if err != nil {
		return failErr(m, err)
	}

	creds, err := parseCredentials(e.Entries)
	if err != nil {
		return failErr(m, err)
	}

	matched, err := credentialfilter.Matching(creds, &filter)
	if err != nil {
		return failErr(m, err)
	}

	return m, Emit{Event: CredentialsFound{Credentials: matched}}
}

func credentialsFound(creds []credential.Credential, m model.Model) (model.Model, Command) {
	if len(creds) == 0 {
		return fail(m, "no matching credentials found")
	}

	next, err := m.PresentationCredentials(creds)
	if err != nil {
		return failErr(m, err)
	}

	return next, Render{}
}

func presentationSigningKey(e PresentationSigningKey, m model.Model, cfg *Config) (model.Model, Command) {
	if e.Err != nil {
		return failErr(m, e.Err)
	}

	s, err := signer.New(e.Key)
	if err != nil {
		return failErr(m, err)
	}

	payload, err := m.PresentationPayload(s.VerificationMethod())
	if err != nil {
		return failErr(m, err)
	}

	now := cfg.now()

	return m, Task{
		Name: "create presentation",
		Run: func(context.Context) Event {
			jws, signErr := proof.CreateVPJWT(payload, now, s)
			if signErr != nil {
				return ErrorOccurred{Message: signErr.Error()}
			}

			return PresentationProofCreated{JWT: jws}
		},
	}
}

func presentationProofCreated(vpJWT string, m model.Model) (model.Model, Command) {
	req, uri, ok, err := m.PresentationResponse(vpJWT)
	if err != nil {
		return failErr(m, err)
	}

	if !ok {
		return fail(m, "no URI to send presentation to")
	}

	form, err := req.Form()
	if err != nil {
		return fail(m, "failed to encode presentation response form")
	}

	return m, HTTP{
		Request: HTTPRequest{
			Method: http.MethodPost,
			URL:    uri,
			Header: http.Header{contentTypeHeader: {mimeForm}, acceptHeader: {mimeJSON}},
			Body:   []byte(form.Encode()),
		},
		Then: func(resp HTTPResponse, err error) Event {
			return VerifierResponded{Response: resp, Err: err}
		},
	}
}
