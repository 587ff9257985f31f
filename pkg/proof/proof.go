/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/kmscrypto/doc/jose"
	"github.com/hyperledger/aries-framework-go/component/models/did"
	"github.com/hyperledger/aries-framework-go/component/models/jwt"
	"github.com/hyperledger/aries-framework-go/component/models/verifiable"
	vdrapi "github.com/hyperledger/aries-framework-go/spi/vdr"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
)

const vpTokenLifetime = 10 * time.Minute

// ErrMissingKeyID is returned when a JWS carries no "kid" header.
var ErrMissingKeyID = errors.New("missing kid header")

type didResolver interface {
	Resolve(did string, opts ...vdrapi.DIDMethodOption) (*did.DocResolution, error)
}

// NewVerifier returns a JWS verifier resolving the "kid" header through the resolver.
func NewVerifier(resolver didResolver) jose.SignatureVerifier {
	return jwt.NewVerifier(jwt.KeyResolverFunc(verifiable.NewVDRKeyResolver(resolver).PublicKeyFetcher()))
}

// CreateProofJWT signs the proof of possession for a credential request.
func CreateProofJWT(claims oidc4vci.ProofClaims, signer jose.Signer) (string, error) {
	return sign(claims, jose.Headers{jose.HeaderType: oidc4vci.ProofJWTType}, signer)
}

// VPClaims are the claims of a VP JWT.
type VPClaims struct {
	Issuer    string                         `json:"iss,omitempty"`
	Audience  string                         `json:"aud"`
	Nonce     string                         `json:"nonce"`
	IssuedAt  *josejwt.NumericDate           `json:"iat"`
	NotBefore *josejwt.NumericDate           `json:"nbf,omitempty"`
	Expiry    *josejwt.NumericDate           `json:"exp,omitempty"`
	ID        string                         `json:"jti,omitempty"`
	VP        oidc4vp.VerifiablePresentation `json:"vp"`
}

// CreateVPJWT signs a verifiable presentation for the verifier named in the payload.
func CreateVPJWT(payload oidc4vp.VPPayload, now time.Time, signer jose.Signer) (string, error) {
	claims := VPClaims{
		Issuer:    payload.VP.Holder,
		Audience:  payload.ClientID,
		Nonce:     payload.Nonce,
		IssuedAt:  josejwt.NewNumericDate(now),
		NotBefore: josejwt.NewNumericDate(now),
		Expiry:    josejwt.NewNumericDate(now.Add(vpTokenLifetime)),
		ID:        uuid.NewString(),
		VP:        payload.VP,
	}

	return sign(claims, jose.Headers{jose.HeaderType: jwt.TypeJWT}, signer)
}

// VCClaims are the claims of a JWT-encoded verifiable credential.
type VCClaims struct {
	Issuer    string                          `json:"iss,omitempty"`
	Subject   string                          `json:"sub,omitempty"`
	ID        string                          `json:"jti,omitempty"`
	IssuedAt  *josejwt.NumericDate            `json:"iat,omitempty"`
	NotBefore *josejwt.NumericDate            `json:"nbf,omitempty"`
	Expiry    *josejwt.NumericDate            `json:"exp,omitempty"`
	VC        credential.VerifiableCredential `json:"vc"`
}

// VerifyCredential checks the signature of a VC JWT and returns the credential with its issuance
// time in Unix seconds ("iat", falling back to "nbf").
func VerifyCredential(vcJWT string, resolver didResolver) (credential.VerifiableCredential, int64, error) {
	var claims VCClaims

	if err := parse(vcJWT, NewVerifier(resolver), &claims); err != nil {
		return credential.VerifiableCredential{}, 0, fmt.Errorf("verify credential: %w", err)
	}

	var issuedAt int64

	switch {
	case claims.IssuedAt != nil:
		issuedAt = claims.IssuedAt.Time().Unix()
	case claims.NotBefore != nil:
		issuedAt = claims.NotBefore.Time().Unix()
	}

	vc := claims.VC

	if vc.ID == "" {
		vc.ID = claims.ID
	}

	if len(vc.Issuer) == 0 && claims.Issuer != "" {
		b, err := json.Marshal(claims.Issuer)
		if err != nil {
			return credential.VerifiableCredential{}, 0, fmt.Errorf("marshal issuer: %w", err)
		}

		vc.Issuer = b
	}

	return vc, issuedAt, nil
}

// VerifyRequestObject checks the signature of a request object JWT and decodes it.
func VerifyRequestObject(requestJWT string, resolver didResolver) (oidc4vp.RequestObject, error) {
	var ro oidc4vp.RequestObject

	if err := parse(requestJWT, NewVerifier(resolver), &ro); err != nil {
		return oidc4vp.RequestObject{}, fmt.Errorf("verify request object: %w", err)
	}

	return ro, nil
}

// KeyID returns the "kid" header of a JWS without verifying its signature.
func KeyID(jws string) (string, error) {
	token, _, err := jwt.Parse(jws, jwt.WithSignatureVerifier(headersOnly{}), jwt.WithIgnoreClaimsMapDecoding(true))
	if err != nil {
		return "", fmt.Errorf("parse jwt: %w", err)
	}

	kid := token.LookupStringHeader(jose.HeaderKeyID)
	if kid == "" {
		return "", ErrMissingKeyID
	}

	return kid, nil
}

func sign(claims interface{}, headers jose.Headers, signer jose.Signer) (string, error) {
	token, err := jwt.NewSigned(claims, headers, signer)
	if err != nil {
		return "", fmt.Errorf("create signed jwt: %w", err)
	}

	jws, err := token.Serialize(false)
	if err != nil {
		return "", fmt.Errorf("serialize signed jwt: %w", err)
	}

	return jws, nil
}

func parse(jws string, verifier jose.SignatureVerifier, claims interface{}) error {
	_, b, err := jwt.Parse(jws, jwt.WithSignatureVerifier(verifier), jwt.WithIgnoreClaimsMapDecoding(true))
	if err != nil {
		return err
	}

	if err = json.Unmarshal(b, claims); err != nil {
		return fmt.Errorf("unmarshal claims: %w", err)
	}

	return nil
}

// headersOnly accepts any signature; it is used to read headers before the key is known.
type headersOnly struct{}

func (headersOnly) Verify(_ jose.Headers, _, _, _ []byte) error {
	return nil
}
