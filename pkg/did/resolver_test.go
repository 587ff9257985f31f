/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/util/fingerprint"
	"github.com/stretchr/testify/require"

	did2 "github.com/trustbloc/wallet/pkg/did"
	"github.com/trustbloc/wallet/pkg/internal/testutil"
)

func TestFixedResolver(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	doc := testutil.Ed25519DIDDoc("did:web:issuer.example.com", pub)

	r := did2.NewFixedResolver(doc)

	for _, id := range []string{"did:web:issuer.example.com", "did:web:other.example.com"} {
		res, resolveErr := r.Resolve(id)
		require.NoError(t, resolveErr)
		require.Same(t, doc, res.DIDDocument)
	}

	_, err = did2.NewFixedResolver(nil).Resolve("did:web:issuer.example.com")
	require.Error(t, err)
}

func TestParseDocument(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	doc := testutil.Ed25519DIDDoc("did:web:issuer.example.com", pub)

	b, err := doc.JSONBytes()
	require.NoError(t, err)

	parsed, err := did2.ParseDocument(b)
	require.NoError(t, err)
	require.Equal(t, "did:web:issuer.example.com", parsed.ID)
	require.Len(t, parsed.VerificationMethod, 1)
	require.Equal(t, []byte(pub), parsed.VerificationMethod[0].Value)

	_, err = did2.ParseDocument([]byte("not json"))
	require.Error(t, err)
}

func TestResolveKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	didKey, keyID := fingerprint.CreateDIDKey(pub)

	doc, err := did2.ResolveKey(didKey)
	require.NoError(t, err)
	require.Equal(t, didKey, doc.ID)
	require.Equal(t, keyID, doc.VerificationMethod[0].ID)
	require.Equal(t, []byte(pub), doc.VerificationMethod[0].Value)

	_, err = did2.ResolveKey("did:key:invalid")
	require.Error(t, err)
}
