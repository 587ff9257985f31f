/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/models/did"
	"github.com/hyperledger/aries-framework-go/component/vdr/key"
	vdrapi "github.com/hyperledger/aries-framework-go/spi/vdr"
)

// FixedResolver answers every resolution with the same, already fetched, DID document. It lets
// a signature be verified offline once the document has been retrieved over HTTP.
type FixedResolver struct {
	doc *did.Doc
}

// NewFixedResolver returns a resolver for doc.
func NewFixedResolver(doc *did.Doc) *FixedResolver {
	return &FixedResolver{doc: doc}
}

// Resolve returns the fixed document regardless of the DID asked for.
func (r *FixedResolver) Resolve(_ string, _ ...vdrapi.DIDMethodOption) (*did.DocResolution, error) {
	if r.doc == nil {
		return nil, fmt.Errorf("no DID document")
	}

	return &did.DocResolution{DIDDocument: r.doc}, nil
}

// ParseDocument decodes a DID document, accepting a bare document or a resolution result.
func ParseDocument(b []byte) (*did.Doc, error) {
	doc, err := did.ParseDocument(b)
	if err == nil {
		return doc, nil
	}

	res, resErr := did.ParseDocumentResolution(b)
	if resErr != nil {
		return nil, fmt.Errorf("parse did document: %w", err)
	}

	return res.DIDDocument, nil
}

// ResolveKey expands a did:key DID into its DID document without network access.
func ResolveKey(didID string) (*did.Doc, error) {
	res, err := key.New().Read(didID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", didID, err)
	}

	return res.DIDDocument, nil
}
