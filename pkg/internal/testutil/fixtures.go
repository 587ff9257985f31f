/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/models/presexch"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/wallet/pkg/oidc4vci"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
)

const (
	// EmployeeConfigID is the configuration id of the employee credential offered by the fixtures.
	EmployeeConfigID = "EmployeeID_JWT"
	// PreAuthorizedCode is the code carried by fixture offers.
	PreAuthorizedCode = "pre-auth-code"
)

// IssuerMetadata returns metadata for an issuer offering an employee credential with a logo and
// a background image served by the issuer itself.
func IssuerMetadata(issuer string) oidc4vci.IssuerMetadata {
	return oidc4vci.IssuerMetadata{
		CredentialIssuer: issuer,
		Display:          []oidc4vci.IssuerDisplay{{Name: "Example Issuer", Locale: "en-NZ"}},
		CredentialConfigurationsSupported: map[string]oidc4vci.CredentialConfiguration{
			EmployeeConfigID: {
				Format: oidc4vci.FormatJWTVCJSON,
				Display: []oidc4vci.CredentialDisplay{{
					Name:            "Employee ID",
					Description:     "Credential for employee identification",
					BackgroundColor: "#323ED2",
					TextColor:       "#FFFFFF",
					Logo:            &oidc4vci.Image{URI: issuer + "/logo.png"},
					BackgroundImage: &oidc4vci.Image{URI: issuer + "/background.png"},
				}},
				CredentialDefinition: &oidc4vci.CredentialDefinition{
					Type: []string{"VerifiableCredential", "EmployeeIDCredential"},
					CredentialSubject: map[string]oidc4vci.ClaimDefinition{
						"givenName":  {Display: []oidc4vci.ClaimDisplay{{Name: "Given name"}}},
						"familyName": {Display: []oidc4vci.ClaimDisplay{{Name: "Family name"}}},
					},
				},
			},
		},
	}
}

// Offer returns a flattened URL-encoded pre-authorized code offer. The offer asks for a six
// digit transaction code when withTxCode is set.
func Offer(t *testing.T, issuer string, withTxCode bool, configIDs ...string) string {
	t.Helper()

	grant := oidc4vci.PreAuthorizedCodeGrant{PreAuthorizedCode: PreAuthorizedCode}
	if withTxCode {
		grant.TxCode = &oidc4vci.TxCode{
			InputMode:   "numeric",
			Length:      6,
			Description: "Please provide the one-time code received",
		}
	}

	ids, err := json.Marshal(configIDs)
	require.NoError(t, err)

	grants, err := json.Marshal(oidc4vci.Grants{PreAuthorizedCode: &grant})
	require.NoError(t, err)

	v := url.Values{}
	v.Set("credential_issuer", issuer)
	v.Set("credential_configuration_ids", string(ids))
	v.Set("grants", string(grants))

	return v.Encode()
}

// TokenResponse returns a token response authorizing one credential identifier for the
// employee configuration.
func TokenResponse() oidc4vci.TokenResponse {
	return oidc4vci.TokenResponse{
		AccessToken: "access-token",
		TokenType:   "Bearer",
		ExpiresIn:   900,
		CNonce:      "c-nonce",
		AuthorizationDetails: []oidc4vci.AuthorizationDetail{{
			Type:                      oidc4vci.AuthorizationDetailsType,
			CredentialConfigurationID: EmployeeConfigID,
			CredentialIdentifiers:     []string{"EmployeeID2023"},
		}},
	}
}

// RequestObject returns a request object asking for an employee credential.
func RequestObject(clientID, responseURI string) oidc4vp.RequestObject {
	return oidc4vp.RequestObject{
		ResponseType: "vp_token",
		ResponseMode: "direct_post",
		ResponseURI:  responseURI,
		ClientID:     clientID,
		Nonce:        "request-nonce",
		State:        "request-state",
		PresentationDefinition: &presexch.PresentationDefinition{
			ID: "employee-definition",
			InputDescriptors: []*presexch.InputDescriptor{{
				ID: EmployeeConfigID,
				Constraints: &presexch.Constraints{
					Fields: []*presexch.Field{{
						Path:   []string{"$.type"},
						Filter: &presexch.Filter{Type: lo.ToPtr("string"), Const: "EmployeeIDCredential"},
					}},
				},
			}},
		},
	}
}
