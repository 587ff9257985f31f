/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"time"

	"github.com/trustbloc/wallet/pkg/model"
)

const (
	// SigningKeyID is the key store id of the holder key.
	SigningKeyID = "credential"
	// SigningKeyPurpose is the key store purpose of the holder key.
	SigningKeyPurpose = "signing"
)

// Config carries the values Update needs beyond the event and the model.
type Config struct {
	// ClientID is the OAuth client id the wallet presents to issuers.
	ClientID string
	// SubjectID is the holder's subject identifier.
	SubjectID string
	// Now returns the current time, time.Now when nil.
	Now func() time.Time
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}

	return c.Now()
}

// Update applies an event to the model and returns the next model with the command to run. It
// performs no I/O; every failure moves the model to the error aspect.
func Update(event Event, m model.Model, cfg Config) (model.Model, Command) {
	switch e := event.(type) {
	case ErrorOccurred:
		return m.Error(e.Message), Render{}
	case Ready, Select, Delete, CredentialsLoaded, CredentialStored, CredentialDeleted:
		return credentialEvent(e, m)
	case ScanOffer, Offer, IssuerReceived, LogoReceived, BackgroundReceived, OfferAccepted, PINEntered,
		TokenReceived, IssuanceSigningKey, ProofCreated, CredentialReceived, IssuerDIDResolved,
		CredentialVerified, IssuanceStored, IssuanceCancelled:
		return issuanceEvent(e, m, &cfg)
	case ScanRequest, Request, RequestReceived, VerifierDIDResolved, RequestVerified,
		PresentationCredentialsLoaded, CredentialsFound, PresentationApproved, PresentationSigningKey,
		PresentationProofCreated, VerifierResponded, PresentationCancelled:
		return presentationEvent(e, m, &cfg)
	default:
		return m, None{}
	}
}

func fail(m model.Model, message string) (model.Model, Command) {
	return m.Error(message), Render{}
}

func failErr(m model.Model, err error) (model.Model, Command) {
	return fail(m, err.Error())
}

// reset abandons the current flow and reloads the stored credentials.
func reset(m model.Model) (model.Model, Command) {
	return m.Ready(), batch(Render{}, loadCredentials())
}
