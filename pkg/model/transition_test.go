/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/internal/testutil"
	"github.com/trustbloc/wallet/pkg/model"
	"github.com/trustbloc/wallet/pkg/oidc4vci"
)

const verifierDID = "did:web:verifier.example.com"

// allStates builds one model per state variant, keyed by variant name.
func allStates(t *testing.T) map[string]model.Model {
	t.Helper()

	offered, err := model.New().ScanIssuanceOffer().IssuanceOffer(
		testutil.Offer(t, issuerURL, false, testutil.EmployeeConfigID))
	require.NoError(t, err)

	accepted, err := withMetadata(t, false).Accept()
	require.NoError(t, err)

	token, err := accepted.ApplyToken(testutil.TokenResponse())
	require.NoError(t, err)

	requested, err := model.New().ScanPresentationRequest().PresentationRequest("request.jwt")
	require.NoError(t, err)

	verified, err := requested.PresentationVerified(testutil.RequestObject(verifierDID, "https://verifier.example.com/post"))
	require.NoError(t, err)

	matched, err := verified.PresentationCredentials([]credential.Credential{{ID: "c1", Issued: "vc.jwt"}})
	require.NoError(t, err)

	approved, err := matched.PresentationApprove()
	require.NoError(t, err)

	return map[string]model.Model{
		"Credential":              model.New(),
		"Error":                   model.New().Error("failed"),
		"IssuanceInactive":        model.New().ScanIssuanceOffer(),
		"IssuanceOffered":         offered,
		"IssuanceIssuerMetadata":  withMetadata(t, false),
		"IssuanceAccepted":        accepted,
		"IssuanceToken":           token,
		"IssuanceProof":           withProof(t),
		"IssuanceIssued":          withIssued(t, oidc4vci.CredentialResponse{Credential: json.RawMessage(`"a.b.c"`)}),
		"PresentationInactive":    model.New().ScanPresentationRequest(),
		"PresentationRequested":   requested,
		"PresentationVerified":    verified,
		"PresentationCredentials": matched,
		"PresentationApproved":    approved,
	}
}

func TestModel_TransitionPreconditions(t *testing.T) {
	tests := []struct {
		name         string
		predecessors []string
		apply        func(m model.Model) error
	}{
		{
			name:         "ApplyIssuerMetadata",
			predecessors: []string{"IssuanceOffered"},
			apply: func(m model.Model) error {
				_, err := m.ApplyIssuerMetadata(testutil.IssuerMetadata(issuerURL), clientID, subjectID)
				return err
			},
		},
		{
			name:         "ApplyLogo",
			predecessors: []string{"IssuanceIssuerMetadata"},
			apply: func(m model.Model) error {
				_, err := m.ApplyLogo([]byte("logo"), "image/png")
				return err
			},
		},
		{
			name:         "ApplyBackground",
			predecessors: []string{"IssuanceIssuerMetadata"},
			apply: func(m model.Model) error {
				_, err := m.ApplyBackground([]byte("bg"), "image/png")
				return err
			},
		},
		{
			name:         "Accept",
			predecessors: []string{"IssuanceIssuerMetadata", "IssuanceAccepted"},
			apply: func(m model.Model) error {
				_, err := m.Accept()
				return err
			},
		},
		{
			name:         "ApplyPIN",
			predecessors: []string{"IssuanceAccepted"},
			apply: func(m model.Model) error {
				_, err := m.ApplyPIN("123456")
				return err
			},
		},
		{
			name:         "TokenRequest",
			predecessors: []string{"IssuanceAccepted"},
			apply: func(m model.Model) error {
				_, err := m.TokenRequest()
				return err
			},
		},
		{
			name:         "ApplyToken",
			predecessors: []string{"IssuanceAccepted"},
			apply: func(m model.Model) error {
				_, err := m.ApplyToken(testutil.TokenResponse())
				return err
			},
		},
		{
			name:         "ProofClaims",
			predecessors: []string{"IssuanceToken"},
			apply: func(m model.Model) error {
				_, err := m.ProofClaims(time.Unix(1700000000, 0))
				return err
			},
		},
		{
			name:         "ApplyProof",
			predecessors: []string{"IssuanceToken"},
			apply: func(m model.Model) error {
				_, err := m.ApplyProof("proof.jwt")
				return err
			},
		},
		{
			name:         "CredentialRequest",
			predecessors: []string{"IssuanceProof"},
			apply: func(m model.Model) error {
				_, _, err := m.CredentialRequest("proof.jwt")
				return err
			},
		},
		{
			name:         "ApplyIssued",
			predecessors: []string{"IssuanceProof"},
			apply: func(m model.Model) error {
				_, err := m.ApplyIssued(oidc4vci.CredentialResponse{Credential: json.RawMessage(`"a.b.c"`)})
				return err
			},
		},
		{
			name:         "AddCredential",
			predecessors: []string{"IssuanceIssued"},
			apply: func(m model.Model) error {
				_, err := m.AddCredential(employeeVC(), 1704164645)
				return err
			},
		},
		{
			name:         "StorableCredential",
			predecessors: []string{"IssuanceIssued"},
			apply: func(m model.Model) error {
				_, err := m.StorableCredential()
				return err
			},
		},
		{
			name:         "PresentationRequest",
			predecessors: []string{"PresentationInactive"},
			apply: func(m model.Model) error {
				_, err := m.PresentationRequest("request.jwt")
				return err
			},
		},
		{
			name:         "PresentationVerified",
			predecessors: []string{"PresentationRequested"},
			apply: func(m model.Model) error {
				_, err := m.PresentationVerified(testutil.RequestObject(verifierDID, ""))
				return err
			},
		},
		{
			name:         "PresentationFilter",
			predecessors: []string{"PresentationVerified"},
			apply: func(m model.Model) error {
				_, err := m.PresentationFilter()
				return err
			},
		},
		{
			name:         "PresentationCredentials",
			predecessors: []string{"PresentationVerified"},
			apply: func(m model.Model) error {
				_, err := m.PresentationCredentials([]credential.Credential{{ID: "c1"}})
				return err
			},
		},
		{
			name:         "PresentationApprove",
			predecessors: []string{"PresentationCredentials"},
			apply: func(m model.Model) error {
				_, err := m.PresentationApprove()
				return err
			},
		},
		{
			name:         "PresentationPayload",
			predecessors: []string{"PresentationApproved"},
			apply: func(m model.Model) error {
				_, err := m.PresentationPayload("did:key:z6Mk#z6Mk")
				return err
			},
		},
		{
			name:         "PresentationResponse",
			predecessors: []string{"PresentationApproved"},
			apply: func(m model.Model) error {
				_, _, _, err := m.PresentationResponse("vp.jwt")
				return err
			},
		},
		{
			name:         "PresentationSucceeded",
			predecessors: []string{"PresentationApproved"},
			apply: func(m model.Model) error {
				_, err := m.PresentationSucceeded()
				return err
			},
		},
	}

	states := allStates(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for name, m := range states {
				if lo.Contains(tt.predecessors, name) {
					continue
				}

				err := tt.apply(m)
				require.ErrorIsf(t, err, model.ErrUnexpectedState, "%s from %s", tt.name, name)
			}
		})
	}
}

func TestModel_TransitionDoesNotModifyReceiver(t *testing.T) {
	states := allStates(t)

	before := states["PresentationApproved"]

	after, err := before.PresentationSucceeded()
	require.NoError(t, err)
	require.Equal(t, model.AspectPresentationSuccess, after.ActiveView)
	require.IsType(t, model.PresentationApproved{}, after.State)
	require.Equal(t, model.AspectPresentationRequest, before.ActiveView)
}

func TestModel_ReadyFromEveryState(t *testing.T) {
	for name, m := range allStates(t) {
		require.Equalf(t, model.New(), m.Ready(), "ready from %s", name)
	}
}

