/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/oidc4vp"
)

// Event is an input to Update. Events are raised by the user (through the shell) or by the
// results of commands.
type Event interface {
	event()
}

// ErrorOccurred moves the application to the error aspect.
type ErrorOccurred struct {
	Message string
}

// Credential events.
type (
	// Ready is raised when the application starts.
	Ready struct{}
	// Select shows a stored credential.
	Select struct{ ID string }
	// Delete removes a stored credential.
	Delete struct{ ID string }
	// CredentialsLoaded carries the credential catalog.
	CredentialsLoaded struct {
		Entries [][]byte
		Err     error
	}
	// CredentialStored reports a credential save.
	CredentialStored struct{ Err error }
	// CredentialDeleted reports a credential delete.
	CredentialDeleted struct{ Err error }
)

// Issuance events.
type (
	// ScanOffer is raised when the holder wants to scan an offer.
	ScanOffer struct{}
	// Offer carries a scanned, URL-encoded credential offer.
	Offer struct{ Encoded string }
	// IssuerReceived carries the issuer metadata response.
	IssuerReceived struct {
		Response HTTPResponse
		Err      error
	}
	// LogoReceived carries the offered credential's logo.
	LogoReceived struct {
		Response HTTPResponse
		Err      error
	}
	// BackgroundReceived carries the offered credential's background image.
	BackgroundReceived struct {
		Response HTTPResponse
		Err      error
	}
	// OfferAccepted is raised when the holder accepts the offer.
	OfferAccepted struct{}
	// PINEntered carries the transaction code entered by the holder.
	PINEntered struct{ PIN string }
	// TokenReceived carries the token endpoint response.
	TokenReceived struct {
		Response HTTPResponse
		Err      error
	}
	// IssuanceSigningKey carries the holder key used for the proof of possession.
	IssuanceSigningKey struct {
		Key []byte
		Err error
	}
	// ProofCreated carries the signed proof of possession.
	ProofCreated struct{ JWT string }
	// CredentialReceived carries the credential endpoint response.
	CredentialReceived struct {
		Response HTTPResponse
		Err      error
	}
	// IssuerDIDResolved carries the DID document of the credential signer.
	IssuerDIDResolved struct {
		Response HTTPResponse
		Err      error
	}
	// CredentialVerified carries the verified credential and its issuance time.
	CredentialVerified struct {
		VC       credential.VerifiableCredential
		IssuedAt int64
	}
	// IssuanceStored reports the save of the issued credential.
	IssuanceStored struct{ Err error }
	// IssuanceCancelled abandons the issuance.
	IssuanceCancelled struct{}
)

// Presentation events.
type (
	// ScanRequest is raised when the holder wants to scan a presentation request.
	ScanRequest struct{}
	// Request carries a scanned request URL (or a request object passed by value).
	Request struct{ URL string }
	// RequestReceived carries the request object response.
	RequestReceived struct {
		Response HTTPResponse
		Err      error
	}
	// VerifierDIDResolved carries the DID document of the request object signer.
	VerifierDIDResolved struct {
		Response HTTPResponse
		Err      error
	}
	// RequestVerified carries the verified request object.
	RequestVerified struct{ Request oidc4vp.RequestObject }
	// PresentationCredentialsLoaded carries the credential catalog, before filtering.
	PresentationCredentialsLoaded struct {
		Entries [][]byte
		Err     error
	}
	// CredentialsFound carries the stored credentials matching the request.
	CredentialsFound struct{ Credentials []credential.Credential }
	// PresentationApproved is raised when the holder approves the presentation.
	PresentationApproved struct{}
	// PresentationSigningKey carries the holder key used to sign the presentation.
	PresentationSigningKey struct {
		Key []byte
		Err error
	}
	// PresentationProofCreated carries the signed VP.
	PresentationProofCreated struct{ JWT string }
	// VerifierResponded carries the verifier's answer to the presentation.
	VerifierResponded struct {
		Response HTTPResponse
		Err      error
	}
	// PresentationCancelled abandons the presentation.
	PresentationCancelled struct{}
)

func (ErrorOccurred) event() {}

func (Ready) event()             {}
func (Select) event()            {}
func (Delete) event()            {}
func (CredentialsLoaded) event() {}
func (CredentialStored) event()  {}
func (CredentialDeleted) event() {}

func (ScanOffer) event()          {}
func (Offer) event()              {}
func (IssuerReceived) event()     {}
func (LogoReceived) event()       {}
func (BackgroundReceived) event() {}
func (OfferAccepted) event()      {}
func (PINEntered) event()         {}
func (TokenReceived) event()      {}
func (IssuanceSigningKey) event() {}
func (ProofCreated) event()       {}
func (CredentialReceived) event() {}
func (IssuerDIDResolved) event()  {}
func (CredentialVerified) event() {}
func (IssuanceStored) event()     {}
func (IssuanceCancelled) event()  {}

func (ScanRequest) event()                   {}
func (Request) event()                       {}
func (RequestReceived) event()               {}
func (VerifierDIDResolved) event()           {}
func (RequestVerified) event()               {}
func (PresentationCredentialsLoaded) event() {}
func (CredentialsFound) event()              {}
func (PresentationApproved) event()          {}
func (PresentationSigningKey) event()        {}
func (PresentationProofCreated) event()      {}
func (VerifierResponded) event()             {}
func (PresentationCancelled) event()         {}
