/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"time"

	"go.uber.org/zap"
)

// Log Fields.
const (
	FieldAdditionalMessage = "additionalMessage"
	FieldAspect            = "aspect"
	FieldCatalog           = "catalog"
	FieldCommand           = "command"
	FieldCredentialID      = "credentialID"
	FieldEvent             = "event"
	FieldHostURL           = "hostURL"
	FieldMethod            = "method"
	FieldSleep             = "sleep"
	FieldUserLogLevel      = "userLogLevel"
)

// WithAdditionalMessage sets the AdditionalMessage field.
func WithAdditionalMessage(value string) zap.Field {
	return zap.String(FieldAdditionalMessage, value)
}

// WithAspect sets the Aspect (active view) field.
func WithAspect(aspect string) zap.Field {
	return zap.String(FieldAspect, aspect)
}

// WithCatalog sets the Catalog (store namespace) field.
func WithCatalog(catalog string) zap.Field {
	return zap.String(FieldCatalog, catalog)
}

// WithCommand sets the Command field.
func WithCommand(command string) zap.Field {
	return zap.String(FieldCommand, command)
}

// WithCredentialID sets the CredentialID field.
func WithCredentialID(id string) zap.Field {
	return zap.String(FieldCredentialID, id)
}

// WithEvent sets the Event field. Only the event name is logged: events may carry key material.
func WithEvent(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

// WithHostURL sets the HostURL field.
func WithHostURL(hostURL string) zap.Field {
	return zap.String(FieldHostURL, hostURL)
}

// WithMethod sets the HTTP Method field.
func WithMethod(method string) zap.Field {
	return zap.String(FieldMethod, method)
}

// WithSleep sets the Sleep field.
func WithSleep(value time.Duration) zap.Field {
	return zap.Duration(FieldSleep, value)
}

// WithUserLogLevel sets the UserLogLevel field.
func WithUserLogLevel(logLevel string) zap.Field {
	return zap.String(FieldUserLogLevel, logLevel)
}
