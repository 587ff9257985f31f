/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package view

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/model"
)

// Claim is a subject claim ready for display.
type Claim struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Credential is a stored or offered credential ready for display.
type Credential struct {
	ID              string                `json:"id"`
	Issuer          string                `json:"issuer"`
	IssuerName      string                `json:"issuer_name,omitempty"`
	Type            string                `json:"type"`
	Name            string                `json:"name,omitempty"`
	Description     string                `json:"description,omitempty"`
	BackgroundColor string                `json:"background_color,omitempty"`
	TextColor       string                `json:"text_color,omitempty"`
	Logo            *credential.ImageData `json:"logo,omitempty"`
	Background      *credential.ImageData `json:"background,omitempty"`
	Claims          []Claim               `json:"claims,omitempty"`
	IssuanceDate    string                `json:"issuance_date,omitempty"`
	Expiry          string                `json:"expiry,omitempty"`
}

// CredentialView is the stored credential list with the selected credential id.
type CredentialView struct {
	ID          string       `json:"id,omitempty"`
	Credentials []Credential `json:"credentials"`
}

func credentialView(s model.CredentialState) CredentialView {
	return CredentialView{
		ID:          s.ID,
		Credentials: credentials(s.Credentials),
	}
}

func credentials(creds []credential.Credential) []Credential {
	return lo.Map(creds, func(c credential.Credential, _ int) Credential {
		return fromCredential(&c)
	})
}

func fromCredential(c *credential.Credential) Credential {
	v := Credential{
		ID:         c.ID,
		Issuer:     c.Issuer,
		IssuerName: c.IssuerName,
		Type:       c.DisplayType(),
		Logo:       c.Logo,
		Background: c.Background,
	}

	if c.Display != nil {
		v.Name = c.Display.Name
		v.Description = c.Display.Description
		v.BackgroundColor = c.Display.BackgroundColor
		v.TextColor = c.Display.TextColor
	}

	if !c.IssuanceDate.IsZero() {
		v.IssuanceDate = c.IssuanceDate.UTC().Format(time.RFC3339)
	}

	if c.ValidUntil != nil {
		v.Expiry = c.ValidUntil.UTC().Format(time.RFC3339)
	}

	if len(c.SubjectClaims) > 0 {
		for id, value := range c.SubjectClaims[0].Claims {
			name := id
			if def, ok := c.ClaimDefinitions[id]; ok && def.Name != "" {
				name = def.Name
			}

			v.Claims = append(v.Claims, Claim{ID: id, Name: name, Value: claimValue(value)})
		}
	}

	sortClaims(v.Claims)

	return v
}

// fromOffer describes an offered credential. Claims carry no values until the credential is
// issued.
func fromOffer(issuer, issuerName string, offered *model.OfferedCredential) Credential {
	v := Credential{
		ID:         offered.ConfigID,
		Issuer:     issuer,
		IssuerName: issuerName,
		Logo:       offered.Logo,
		Background: offered.Background,
	}

	if def := offered.Config.CredentialDefinition; def != nil {
		c := credential.Credential{Type: def.Type}
		v.Type = c.DisplayType()

		for id, claim := range def.CredentialSubject {
			name := id
			if len(claim.Display) > 0 && claim.Display[0].Name != "" {
				name = claim.Display[0].Name
			}

			v.Claims = append(v.Claims, Claim{ID: id, Name: name})
		}
	}

	if len(offered.Config.Display) > 0 {
		d := offered.Config.Display[0]
		v.Name = d.Name
		v.Description = d.Description
		v.BackgroundColor = d.BackgroundColor
		v.TextColor = d.TextColor
	}

	sortClaims(v.Claims)

	return v
}

func sortClaims(claims []Claim) {
	slices.SortFunc(claims, func(a, b Claim) int { return cmp.Compare(a.ID, b.ID) })
}

func claimValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(b)
	}
}
