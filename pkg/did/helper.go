/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/models/did"
)

const (
	webPrefix = "did:web:"
	keyPrefix = "did:key:"

	wellKnownDIDPath = "/.well-known/did.json"
	didDocumentName  = "/did.json"
)

// VerificationMethods returns the first verification method encountered for all relations in the same given order.
// At least one relation must be provided.
func VerificationMethods(d *did.Doc, relations ...did.VerificationRelationship) ([]*did.VerificationMethod, error) {
	vm := make([]*did.VerificationMethod, 0)

	for _, relation := range relations {
		methods := d.VerificationMethods(relation)[relation]

		if len(methods) == 0 {
			return nil, fmt.Errorf("did %s does not have a verification method for relation %d", d.ID, relation)
		}

		vm = append(vm, &methods[0].VerificationMethod)
	}

	return vm, nil
}

// SplitKeyID splits a key id ("did:example:123#key-1") into the DID and the fragment. A key id
// without a fragment is the DID itself.
func SplitKeyID(kid string) (string, string, error) {
	didPart, fragment, _ := strings.Cut(kid, "#")
	if didPart == "" {
		return "", "", fmt.Errorf("key id %q does not name a DID", kid)
	}

	return didPart, fragment, nil
}

// IsKey reports whether the DID uses the did:key method.
func IsKey(didID string) bool {
	return strings.HasPrefix(didID, keyPrefix)
}

// WebURL maps a did:web DID to the HTTPS URL of its DID document. A bare domain resolves to
// /.well-known/did.json, additional colon-separated segments become path segments. A
// percent-encoded port in the domain is decoded.
func WebURL(didID string) (string, error) {
	if !strings.HasPrefix(didID, webPrefix) {
		return "", fmt.Errorf("did %q is not a did:web", didID)
	}

	segments := strings.Split(strings.TrimPrefix(didID, webPrefix), ":")

	host, err := url.PathUnescape(segments[0])
	if err != nil || host == "" {
		return "", fmt.Errorf("did %q has an invalid domain", didID)
	}

	if len(segments) == 1 {
		return "https://" + host + wellKnownDIDPath, nil
	}

	path := make([]string, 0, len(segments)-1)

	for _, s := range segments[1:] {
		p, unescapeErr := url.PathUnescape(s)
		if unescapeErr != nil {
			return "", fmt.Errorf("did %q has an invalid path: %w", didID, unescapeErr)
		}

		path = append(path, p)
	}

	return "https://" + host + "/" + strings.Join(path, "/") + didDocumentName, nil
}
