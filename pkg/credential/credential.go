/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Catalog is the store namespace holding credentials.
const Catalog = "credential"

// ImageData is an image fetched for display, base64 (standard alphabet) encoded.
type ImageData struct {
	Data      string `json:"data"`
	MediaType string `json:"media_type"`
}

// NewImageData encodes raw image bytes.
func NewImageData(data []byte, mediaType string) *ImageData {
	return &ImageData{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}
}

// SubjectClaims are the claims made about one credential subject.
type SubjectClaims struct {
	ID     string                 `json:"id,omitempty"`
	Claims map[string]interface{} `json:"claims"`
}

// Display is the issuer-supplied presentation of the credential.
type Display struct {
	Name            string `json:"name,omitempty"`
	Description     string `json:"description,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
}

// ClaimDefinition carries the display name of a claim.
type ClaimDefinition struct {
	Name      string `json:"name,omitempty"`
	ValueType string `json:"value_type,omitempty"`
}

// Credential is a verifiable credential held by the wallet, in a shape suitable for storage
// and display.
type Credential struct {
	ID               string                     `json:"id"`
	ConfigID         string                     `json:"config_id,omitempty"`
	Issuer           string                     `json:"issuer"`
	IssuerName       string                     `json:"issuer_name,omitempty"`
	Type             []string                   `json:"type"`
	Format           string                     `json:"format,omitempty"`
	SubjectClaims    []SubjectClaims            `json:"subject_claims"`
	ClaimDefinitions map[string]ClaimDefinition `json:"claim_definitions,omitempty"`
	Issued           string                     `json:"issued"`
	IssuanceDate     time.Time                  `json:"issuance_date"`
	ValidFrom        *time.Time                 `json:"valid_from,omitempty"`
	ValidUntil       *time.Time                 `json:"valid_until,omitempty"`
	Display          *Display                   `json:"display,omitempty"`
	Logo             *ImageData                 `json:"logo,omitempty"`
	Background       *ImageData                 `json:"background,omitempty"`
}

// Parse decodes a stored credential.
func Parse(b []byte) (Credential, error) {
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return Credential{}, fmt.Errorf("unmarshal credential: %w", err)
	}

	return c, nil
}

// DisplayType returns the most specific credential type, skipping "VerifiableCredential".
func (c *Credential) DisplayType() string {
	t, ok := lo.Find(lo.Reverse(append([]string(nil), c.Type...)), func(t string) bool {
		return t != "VerifiableCredential"
	})
	if !ok {
		return ""
	}

	return t
}

// Document returns the credential as a W3C VC JSON object for constraint evaluation. The object
// is also reachable under "vc" so JWT-style paths ($.vc.type) resolve.
func (c *Credential) Document() map[string]interface{} {
	subjects := lo.Map(c.SubjectClaims, func(s SubjectClaims, _ int) interface{} {
		m := make(map[string]interface{}, len(s.Claims)+1)
		for k, v := range s.Claims {
			m[k] = v
		}

		if s.ID != "" {
			m["id"] = s.ID
		}

		return m
	})

	types := lo.Map(c.Type, func(t string, _ int) interface{} { return t })

	vc := map[string]interface{}{
		"id":           c.ID,
		"type":         types,
		"issuer":       c.Issuer,
		"issuanceDate": c.IssuanceDate.UTC().Format(time.RFC3339),
	}

	if len(subjects) == 1 {
		vc["credentialSubject"] = subjects[0]
	} else {
		vc["credentialSubject"] = subjects
	}

	doc := make(map[string]interface{}, len(vc)+1)
	for k, v := range vc {
		doc[k] = v
	}

	doc["vc"] = vc

	return doc
}

// VerifiableCredential is the W3C VC data model object carried in a JWT "vc" claim.
type VerifiableCredential struct {
	Context           []interface{}   `json:"@context,omitempty"`
	ID                string          `json:"id,omitempty"`
	Type              []string        `json:"type"`
	Issuer            json.RawMessage `json:"issuer,omitempty"`
	IssuanceDate      string          `json:"issuanceDate,omitempty"`
	ValidFrom         string          `json:"validFrom,omitempty"`
	ExpirationDate    string          `json:"expirationDate,omitempty"`
	ValidUntil        string          `json:"validUntil,omitempty"`
	CredentialSubject json.RawMessage `json:"credentialSubject,omitempty"`
}

// IssuerID returns the issuer identifier, whether the issuer is a string or an object.
func (vc *VerifiableCredential) IssuerID() string {
	r := gjson.ParseBytes(vc.Issuer)
	if r.IsObject() {
		return r.Get("id").String()
	}

	return r.String()
}

// Subjects returns the credential subjects, whether a single object or an array.
func (vc *VerifiableCredential) Subjects() []SubjectClaims {
	r := gjson.ParseBytes(vc.CredentialSubject)

	var items []gjson.Result

	switch {
	case r.IsArray():
		items = r.Array()
	case r.IsObject():
		items = []gjson.Result{r}
	default:
		return nil
	}

	subjects := make([]SubjectClaims, 0, len(items))

	for _, item := range items {
		claims := map[string]interface{}{}

		item.ForEach(func(key, value gjson.Result) bool {
			if key.String() != "id" {
				claims[key.String()] = value.Value()
			}

			return true
		})

		subjects = append(subjects, SubjectClaims{
			ID:     item.Get("id").String(),
			Claims: claims,
		})
	}

	return subjects
}

// ValidityPeriod returns the validity bounds, accepting both data model 1.1 and 2.0 names.
func (vc *VerifiableCredential) ValidityPeriod() (from, until *time.Time) {
	return parseTime(lo.Ternary(vc.ValidFrom != "", vc.ValidFrom, vc.IssuanceDate)),
		parseTime(lo.Ternary(vc.ValidUntil != "", vc.ValidUntil, vc.ExpirationDate))
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}

	return &t
}
