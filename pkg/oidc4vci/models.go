/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vci

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/jinzhu/copier"
)

const (
	// PreAuthorizedCodeGrantType is the grant type of the pre-authorized code flow.
	PreAuthorizedCodeGrantType = "urn:ietf:params:oauth:grant-type:pre-authorized_code"
	// AuthorizationDetailsType is the type of the OID4VCI authorization details entry.
	AuthorizationDetailsType = "openid_credential"
	// ProofJWTType is the "typ" header of a proof of possession JWT.
	ProofJWTType = "openid4vci-proof+jwt"
	// ProofTypeJWT is the proof type used in credential requests.
	ProofTypeJWT = "jwt"
	// FormatJWTVCJSON is the W3C VC JWT credential format.
	FormatJWTVCJSON = "jwt_vc_json"

	// WellKnownPath is the issuer metadata path relative to the credential issuer URL.
	WellKnownPath = "/.well-known/openid-credential-issuer"
)

// CredentialOffer is an issuer-initiated credential offer.
type CredentialOffer struct {
	CredentialIssuer           string   `json:"credential_issuer"`
	CredentialConfigurationIDs []string `json:"credential_configuration_ids"`
	Grants                     *Grants  `json:"grants,omitempty"`
}

// PreAuthorizedCode returns the pre-authorized code grant of the offer, if present.
func (o *CredentialOffer) PreAuthorizedCode() (PreAuthorizedCodeGrant, bool) {
	if o.Grants == nil || o.Grants.PreAuthorizedCode == nil {
		return PreAuthorizedCodeGrant{}, false
	}

	return *o.Grants.PreAuthorizedCode, true
}

// Grants lists the grant types the issuer is prepared to process for an offer.
type Grants struct {
	AuthorizationCode *AuthorizationCodeGrant `json:"authorization_code,omitempty"`
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// AuthorizationCodeGrant is carried for completeness only; the wallet does not run it.
type AuthorizationCodeGrant struct {
	IssuerState         string `json:"issuer_state,omitempty"`
	AuthorizationServer string `json:"authorization_server,omitempty"`
}

// PreAuthorizedCodeGrant holds the pre-authorized code and the optional transaction code spec.
type PreAuthorizedCodeGrant struct {
	PreAuthorizedCode   string  `json:"pre-authorized_code"`
	TxCode              *TxCode `json:"tx_code,omitempty"`
	Interval            int     `json:"interval,omitempty"`
	AuthorizationServer string  `json:"authorization_server,omitempty"`
}

// TxCode describes the transaction code (PIN) the holder has to provide.
type TxCode struct {
	InputMode   string `json:"input_mode,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// IssuerMetadata is the credential issuer's well-known configuration.
type IssuerMetadata struct {
	CredentialIssuer                  string                             `json:"credential_issuer"`
	AuthorizationServers              []string                           `json:"authorization_servers,omitempty"`
	CredentialEndpoint                string                             `json:"credential_endpoint,omitempty"`
	DeferredCredentialEndpoint        string                             `json:"deferred_credential_endpoint,omitempty"`
	NotificationEndpoint              string                             `json:"notification_endpoint,omitempty"`
	TokenEndpoint                     string                             `json:"token_endpoint,omitempty"`
	Display                           []IssuerDisplay                    `json:"display,omitempty"`
	CredentialConfigurationsSupported map[string]CredentialConfiguration `json:"credential_configurations_supported"`
}

// DisplayName returns the issuer name for the locale, falling back to the first display entry.
func (m *IssuerMetadata) DisplayName(locale string) string {
	for _, d := range m.Display {
		if locale == "" || d.Locale == locale {
			return d.Name
		}
	}

	if len(m.Display) > 0 {
		return m.Display[0].Name
	}

	return ""
}

// TokenURL returns the token endpoint, defaulting to {issuer}/token.
func (m *IssuerMetadata) TokenURL() string {
	if m.TokenEndpoint != "" {
		return m.TokenEndpoint
	}

	return m.CredentialIssuer + "/token"
}

// CredentialURL returns the credential endpoint, defaulting to {issuer}/credential.
func (m *IssuerMetadata) CredentialURL() string {
	if m.CredentialEndpoint != "" {
		return m.CredentialEndpoint
	}

	return m.CredentialIssuer + "/credential"
}

// Clone returns a deep copy of the metadata.
func (m IssuerMetadata) Clone() IssuerMetadata {
	var out IssuerMetadata

	if err := copier.CopyWithOption(&out, &m, copier.Option{DeepCopy: true}); err != nil {
		return m
	}

	return out
}

// IssuerDisplay is a localized issuer display entry.
type IssuerDisplay struct {
	Name   string `json:"name,omitempty"`
	Locale string `json:"locale,omitempty"`
	Logo   *Image `json:"logo,omitempty"`
}

// Image references a display image by URI.
type Image struct {
	URI     string `json:"uri,omitempty"`
	AltText string `json:"alt_text,omitempty"`
}

// CredentialConfiguration describes a credential the issuer can issue.
type CredentialConfiguration struct {
	Format                               string                `json:"format"`
	Scope                                string                `json:"scope,omitempty"`
	CryptographicBindingMethodsSupported []string              `json:"cryptographic_binding_methods_supported,omitempty"`
	CredentialSigningAlgValuesSupported  []string              `json:"credential_signing_alg_values_supported,omitempty"`
	ProofTypesSupported                  map[string]ProofType  `json:"proof_types_supported,omitempty"`
	Display                              []CredentialDisplay   `json:"display,omitempty"`
	CredentialDefinition                 *CredentialDefinition `json:"credential_definition,omitempty"`
}

// LogoURI returns the logo URI of the first display entry.
func (c *CredentialConfiguration) LogoURI() string {
	if len(c.Display) == 0 || c.Display[0].Logo == nil {
		return ""
	}

	return c.Display[0].Logo.URI
}

// BackgroundImageURI returns the background image URI of the first display entry.
func (c *CredentialConfiguration) BackgroundImageURI() string {
	if len(c.Display) == 0 || c.Display[0].BackgroundImage == nil {
		return ""
	}

	return c.Display[0].BackgroundImage.URI
}

// ProofType lists the algorithms supported for a proof type.
type ProofType struct {
	ProofSigningAlgValuesSupported []string `json:"proof_signing_alg_values_supported,omitempty"`
}

// CredentialDisplay is a localized credential display entry.
type CredentialDisplay struct {
	Name            string `json:"name,omitempty"`
	Locale          string `json:"locale,omitempty"`
	Logo            *Image `json:"logo,omitempty"`
	Description     string `json:"description,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	BackgroundImage *Image `json:"background_image,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
}

// CredentialDefinition is the W3C credential definition of a configuration.
type CredentialDefinition struct {
	Context           []string                   `json:"@context,omitempty"`
	Type              []string                   `json:"type"`
	CredentialSubject map[string]ClaimDefinition `json:"credentialSubject,omitempty"`
}

// ClaimDefinition describes how a claim is displayed.
type ClaimDefinition struct {
	Mandatory bool           `json:"mandatory,omitempty"`
	ValueType string         `json:"value_type,omitempty"`
	Display   []ClaimDisplay `json:"display,omitempty"`
}

// ClaimDisplay is a localized claim name.
type ClaimDisplay struct {
	Name   string `json:"name,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// AuthorizationSpec narrows an acceptance to one credential configuration and, optionally, a
// subset of its claims.
type AuthorizationSpec struct {
	CredentialConfigurationID string           `json:"credential_configuration_id"`
	Claims                    map[string]Claim `json:"claims,omitempty"`
}

// Claim is a requested claim in an authorization details entry.
type Claim struct {
	Mandatory bool `json:"mandatory,omitempty"`
}

// AuthorizationDetail is an RFC 9396 authorization details entry.
type AuthorizationDetail struct {
	Type                      string           `json:"type"`
	CredentialConfigurationID string           `json:"credential_configuration_id,omitempty"`
	Claims                    map[string]Claim `json:"claims,omitempty"`
	CredentialIdentifiers     []string         `json:"credential_identifiers,omitempty"`
}

// TokenRequest is the pre-authorized code token request.
type TokenRequest struct {
	GrantType            string
	PreAuthorizedCode    string
	TxCode               string
	ClientID             string
	AuthorizationDetails []AuthorizationDetail
}

// Form encodes the token request as an application/x-www-form-urlencoded body.
func (r *TokenRequest) Form() (url.Values, error) {
	v := url.Values{}
	v.Set("grant_type", r.GrantType)
	v.Set("pre-authorized_code", r.PreAuthorizedCode)

	if r.TxCode != "" {
		v.Set("tx_code", r.TxCode)
	}

	if r.ClientID != "" {
		v.Set("client_id", r.ClientID)
	}

	if len(r.AuthorizationDetails) > 0 {
		b, err := json.Marshal(r.AuthorizationDetails)
		if err != nil {
			return nil, err
		}

		v.Set("authorization_details", string(b))
	}

	return v, nil
}

// TokenResponse is the token endpoint response.
type TokenResponse struct {
	AccessToken          string                `json:"access_token"`
	TokenType            string                `json:"token_type,omitempty"`
	ExpiresIn            int                   `json:"expires_in,omitempty"`
	RefreshToken         string                `json:"refresh_token,omitempty"`
	CNonce               string                `json:"c_nonce,omitempty"`
	CNonceExpiresIn      int                   `json:"c_nonce_expires_in,omitempty"`
	AuthorizationDetails []AuthorizationDetail `json:"authorization_details,omitempty"`
}

// ProofClaims are the claims of the proof of possession JWT.
type ProofClaims struct {
	Issuer   string           `json:"iss,omitempty"`
	Audience string           `json:"aud"`
	IssuedAt *jwt.NumericDate `json:"iat"`
	Nonce    string           `json:"nonce,omitempty"`
}

// CredentialRequest is a credential endpoint request made by credential identifier.
type CredentialRequest struct {
	CredentialIdentifier string `json:"credential_identifier,omitempty"`
	Format               string `json:"format,omitempty"`
	Proof                *Proof `json:"proof,omitempty"`
}

// Proof is the proof of possession attached to a credential request.
type Proof struct {
	ProofType string `json:"proof_type"`
	JWT       string `json:"jwt"`
}

// ResponseType tells which shape a credential response has.
type ResponseType int

// Credential response shapes.
const (
	ResponseUnknown ResponseType = iota
	ResponseCredential
	ResponseCredentials
	ResponseTransactionID
)

// CredentialResponse is the credential endpoint response.
type CredentialResponse struct {
	Credential      json.RawMessage   `json:"credential,omitempty"`
	Credentials     []json.RawMessage `json:"credentials,omitempty"`
	TransactionID   string            `json:"transaction_id,omitempty"`
	CNonce          string            `json:"c_nonce,omitempty"`
	CNonceExpiresIn int               `json:"c_nonce_expires_in,omitempty"`
	NotificationID  string            `json:"notification_id,omitempty"`
}

// Type returns the shape of the response.
func (r *CredentialResponse) Type() ResponseType {
	switch {
	case len(r.Credential) > 0:
		return ResponseCredential
	case len(r.Credentials) > 0:
		return ResponseCredentials
	case r.TransactionID != "":
		return ResponseTransactionID
	default:
		return ResponseUnknown
	}
}

// CredentialJWT returns the single credential of the response as a compact JWT.
func (r *CredentialResponse) CredentialJWT() (string, error) {
	if r.Type() != ResponseCredential {
		return "", fmt.Errorf("%w: response does not carry a single credential", ErrUnsupported)
	}

	var s string
	if err := json.Unmarshal(r.Credential, &s); err != nil {
		return "", fmt.Errorf("%w: credential is not a compact JWT", ErrUnsupported)
	}

	return s, nil
}
