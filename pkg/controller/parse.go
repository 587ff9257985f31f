/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"fmt"
)

// Names of the events a holder can raise through the shell.
const (
	EventReady              = "ready"
	EventSelect             = "select"
	EventDelete             = "delete"
	EventScanOffer          = "scan_offer"
	EventOffer              = "offer"
	EventAccept             = "accept"
	EventPIN                = "pin"
	EventCancelIssuance     = "cancel_issuance"
	EventScanRequest        = "scan_request"
	EventRequest            = "request"
	EventApprove            = "approve"
	EventCancelPresentation = "cancel_presentation"
)

// ParseEvent builds a holder event from its name and string value. Events produced by command
// results cannot be raised this way.
func ParseEvent(name, value string) (Event, error) {
	withValue := func(build func(string) Event) (Event, error) {
		if value == "" {
			return nil, fmt.Errorf("event %s requires a value", name)
		}

		return build(value), nil
	}

	switch name {
	case EventReady:
		return Ready{}, nil
	case EventSelect:
		return withValue(func(v string) Event { return Select{ID: v} })
	case EventDelete:
		return withValue(func(v string) Event { return Delete{ID: v} })
	case EventScanOffer:
		return ScanOffer{}, nil
	case EventOffer:
		return withValue(func(v string) Event { return Offer{Encoded: v} })
	case EventAccept:
		return OfferAccepted{}, nil
	case EventPIN:
		return withValue(func(v string) Event { return PINEntered{PIN: v} })
	case EventCancelIssuance:
		return IssuanceCancelled{}, nil
	case EventScanRequest:
		return ScanRequest{}, nil
	case EventRequest:
		return withValue(func(v string) Event { return Request{URL: v} })
	case EventApprove:
		return PresentationApproved{}, nil
	case EventCancelPresentation:
		return PresentationCancelled{}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}
}
