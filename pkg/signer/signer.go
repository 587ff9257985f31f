/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signer

import (
	"crypto/ed25519"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/jose"
	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/util/fingerprint"
	"github.com/hyperledger/aries-framework-go/component/models/jwt"
)

// Algorithm is the JWS algorithm of every signature produced by Signer.
const Algorithm = "EdDSA"

// Signer signs with an Ed25519 key and identifies itself by a did:key verification method.
type Signer struct {
	joseSigner *jwt.JoseED25519Signer
	publicKey  ed25519.PublicKey
	did        string
	keyID      string
}

// New creates a signer from a 32 byte Ed25519 seed.
func New(secret []byte) (*Signer, error) {
	if len(secret) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key must be %d bytes, got %d", ed25519.SeedSize, len(secret))
	}

	privateKey := ed25519.NewKeyFromSeed(secret)
	publicKey := privateKey.Public().(ed25519.PublicKey) //nolint:forcetypeassert

	didKey, keyID := fingerprint.CreateDIDKey(publicKey)

	return &Signer{
		joseSigner: jwt.NewEd25519Signer(privateKey),
		publicKey:  publicKey,
		did:        didKey,
		keyID:      keyID,
	}, nil
}

// Sign signs data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	return s.joseSigner.Sign(data)
}

// PublicKey returns the raw Ed25519 public key.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Algorithm returns the JWS algorithm name.
func (s *Signer) Algorithm() string {
	return Algorithm
}

// DID returns the holder DID.
func (s *Signer) DID() string {
	return s.did
}

// VerificationMethod returns the key id used as the JWS "kid".
func (s *Signer) VerificationMethod() string {
	return s.keyID
}

// Headers provides JWS headers: the aries signer's "alg" plus the did:key "kid".
func (s *Signer) Headers() jose.Headers {
	headers := jose.Headers{jose.HeaderKeyID: s.keyID}

	for k, v := range s.joseSigner.Headers() {
		headers[k] = v
	}

	return headers
}
