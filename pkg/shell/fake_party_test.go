/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package shell_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/jose"
	"github.com/hyperledger/aries-framework-go/component/models/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/wallet/pkg/did"
	"github.com/trustbloc/wallet/pkg/internal/testutil"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
	"github.com/trustbloc/wallet/pkg/proof"
)

const (
	txCode        = "123456"
	verifierPath  = "verifier"
	requestPath   = "/request"
	responsePath  = "/post"
	credentialJTI = "urn:uuid:employee-1"
)

// fakeParty is an issuer and a verifier served over TLS, identified by did:web DIDs on the
// server's own host.
type fakeParty struct {
	srv *httptest.Server

	issuerDID   string
	verifierDID string
	issuerKey   ed25519.PrivateKey
	verifierKey ed25519.PrivateKey

	mu          sync.Mutex
	issued      string
	submissions []url.Values
	failures    []string
}

func newFakeParty(t *testing.T) *fakeParty {
	t.Helper()

	issuerPub, issuerKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	verifierPub, verifierKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	p := &fakeParty{issuerKey: issuerKey, verifierKey: verifierKey}

	mux := http.NewServeMux()
	p.srv = httptest.NewTLSServer(mux)
	t.Cleanup(p.srv.Close)

	host := strings.ReplaceAll(strings.TrimPrefix(p.srv.URL, "https://"), ":", "%3A")

	p.issuerDID = "did:web:" + host
	p.verifierDID = "did:web:" + host + ":" + verifierPath

	issuerDoc, err := testutil.Ed25519DIDDoc(p.issuerDID, issuerPub).JSONBytes()
	require.NoError(t, err)

	verifierDoc, err := testutil.Ed25519DIDDoc(p.verifierDID, verifierPub).JSONBytes()
	require.NoError(t, err)

	requestJWT := testutil.SignedClaimsJWT(t, requestObjectClaims(t, p.verifierDID, p.srv.URL+responsePath),
		p.verifierDID+"#"+testutil.KeyFragment, "oauth-authz-req+jwt", verifierKey)

	mux.HandleFunc("/.well-known/openid-credential-issuer", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, testutil.IssuerMetadata(p.srv.URL))
	})
	mux.HandleFunc("/logo.png", servePNG)
	mux.HandleFunc("/background.png", servePNG)
	mux.HandleFunc("/.well-known/did.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(issuerDoc)
	})
	mux.HandleFunc("/"+verifierPath+"/did.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(verifierDoc)
	})
	mux.HandleFunc("/token", p.token)
	mux.HandleFunc("/credential", p.credential)
	mux.HandleFunc(requestPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, oidc4vp.RequestObjectResponse{RequestObject: requestJWT})
	})
	mux.HandleFunc(responsePath, p.response)

	return p
}

func (p *fakeParty) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("tx_code") != txCode ||
		r.PostForm.Get("pre-authorized_code") != testutil.PreAuthorizedCode {
		p.fail(w, "invalid_grant")

		return
	}

	writeJSON(w, testutil.TokenResponse())
}

func (p *fakeParty) credential(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer access-token" {
		p.fail(w, "invalid_token")

		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		p.fail(w, "invalid_request")

		return
	}

	holderDID, err := verifyHolderJWT(gjson.GetBytes(body, "proof.jwt").String())
	if err != nil {
		p.fail(w, "invalid_proof")

		return
	}

	vcJWT, err := signJWT(map[string]interface{}{
		"iss": p.issuerDID,
		"sub": holderDID,
		"iat": 1704164645,
		"jti": credentialJTI,
		"vc": map[string]interface{}{
			"@context": []string{"https://www.w3.org/2018/credentials/v1"},
			"type":     []string{"VerifiableCredential", "EmployeeIDCredential"},
			"credentialSubject": map[string]interface{}{
				"id":         holderDID,
				"givenName":  "Normal",
				"familyName": "Person",
			},
		},
	}, p.issuerDID+"#"+testutil.KeyFragment, p.issuerKey)
	if err != nil {
		p.fail(w, "server_error")

		return
	}

	p.mu.Lock()
	p.issued = vcJWT
	p.mu.Unlock()

	writeJSON(w, map[string]string{"credential": vcJWT})
}

func (p *fakeParty) response(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.fail(w, "invalid_request")

		return
	}

	if _, err := verifyHolderJWT(r.PostForm.Get("vp_token")); err != nil {
		p.fail(w, "invalid_vp_token")

		return
	}

	p.mu.Lock()
	p.submissions = append(p.submissions, r.PostForm)
	p.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (p *fakeParty) fail(w http.ResponseWriter, code string) {
	p.mu.Lock()
	p.failures = append(p.failures, code)
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, code)
}

func (p *fakeParty) submitted() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]url.Values(nil), p.submissions...)
}

func (p *fakeParty) failed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.failures...)
}

func (p *fakeParty) issuedCredential() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.issued
}

func signJWT(claims interface{}, kid string, key ed25519.PrivateKey) (string, error) {
	token, err := jwt.NewSigned(claims, jose.Headers{jose.HeaderKeyID: kid, jose.HeaderType: jwt.TypeJWT},
		jwt.NewEd25519Signer(key))
	if err != nil {
		return "", err
	}

	return token.Serialize(false)
}

// verifyHolderJWT checks a JWT signed with a did:key and returns the DID.
func verifyHolderJWT(jws string) (string, error) {
	kid, err := proof.KeyID(jws)
	if err != nil {
		return "", err
	}

	holderDID, _, err := did.SplitKeyID(kid)
	if err != nil {
		return "", err
	}

	if !did.IsKey(holderDID) {
		return "", errors.New("holder must use did:key")
	}

	doc, err := did.ResolveKey(holderDID)
	if err != nil {
		return "", err
	}

	_, _, err = jwt.Parse(jws, jwt.WithSignatureVerifier(proof.NewVerifier(did.NewFixedResolver(doc))))
	if err != nil {
		return "", err
	}

	return holderDID, nil
}

func requestObjectClaims(t *testing.T, clientID, responseURI string) map[string]interface{} {
	t.Helper()

	b, err := json.Marshal(testutil.RequestObject(clientID, responseURI))
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &claims))

	return claims
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func servePNG(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(pngHeader)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v) //nolint:errchkjson
}
