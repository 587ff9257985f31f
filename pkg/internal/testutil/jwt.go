/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/jose"
	"github.com/hyperledger/aries-framework-go/component/models/did"
	"github.com/hyperledger/aries-framework-go/component/models/jwt"
	"github.com/stretchr/testify/require"
)

const (
	ed25519VerificationKey2018 = "Ed25519VerificationKey2018"
	didContextV1               = "https://www.w3.org/ns/did/v1"

	// KeyFragment is the fragment of the single key in documents built by Ed25519DIDDoc.
	KeyFragment = "key-0"
)

// Ed25519DIDDoc builds a DID document with one Ed25519 key usable for authentication and
// assertion, identified as <didID>#key-0.
func Ed25519DIDDoc(didID string, pub ed25519.PublicKey) *did.Doc {
	vm := did.NewVerificationMethodFromBytes(didID+"#"+KeyFragment, ed25519VerificationKey2018, didID, pub)

	return &did.Doc{
		Context:            []string{didContextV1},
		ID:                 didID,
		VerificationMethod: []did.VerificationMethod{*vm},
		Authentication:     []did.Verification{*did.NewReferencedVerification(vm, did.Authentication)},
		AssertionMethod:    []did.Verification{*did.NewReferencedVerification(vm, did.AssertionMethod)},
	}
}

// SignedClaimsJWT signs claims with an Ed25519 key, setting the "kid" and "typ" headers
// when not empty.
func SignedClaimsJWT(t *testing.T, claims interface{}, kid, typ string, priv ed25519.PrivateKey) string {
	t.Helper()

	headers := jose.Headers{}
	if kid != "" {
		headers[jose.HeaderKeyID] = kid
	}

	if typ != "" {
		headers[jose.HeaderType] = typ
	}

	token, err := jwt.NewSigned(claims, headers, jwt.NewEd25519Signer(priv))
	require.NoError(t, err)

	jws, err := token.Serialize(false)
	require.NoError(t, err)

	return jws
}
