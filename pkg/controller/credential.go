/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"cmp"
	"slices"

	"github.com/trustbloc/wallet/pkg/credential"
	"github.com/trustbloc/wallet/pkg/model"
)

func credentialEvent(event Event, m model.Model) (model.Model, Command) {
	switch e := event.(type) {
	case Ready:
		return m.Ready(), loadCredentials()
	case Select:
		return m.SelectCredential(e.ID), Render{}
	case Delete:
		return m, StoreDelete{
			Catalog: credential.Catalog,
			ID:      e.ID,
			Then:    func(err error) Event { return CredentialDeleted{Err: err} },
		}
	case CredentialsLoaded:
		if e.Err != nil {
			return failErr(m, e.Err)
		}

		creds, err := parseCredentials(e.Entries)
		if err != nil {
			return failErr(m, err)
		}

		return m.CredentialsLoaded(creds), Render{}
	case CredentialStored:
		return reloadAfter(m, e.Err)
	case CredentialDeleted:
		return reloadAfter(m, e.Err)
	}

	return m, None{}
}

func reloadAfter(m model.Model, err error) (model.Model, Command) {
	if err != nil {
		return failErr(m, err)
	}

	return m, loadCredentials()
}

func loadCredentials() Command {
	return StoreList{
		Catalog: credential.Catalog,
		Then: func(entries [][]byte, err error) Event {
			return CredentialsLoaded{Entries: entries, Err: err}
		},
	}
}

// parseCredentials decodes store entries, newest first.
func parseCredentials(entries [][]byte) ([]credential.Credential, error) {
	creds := make([]credential.Credential, 0, len(entries))

	for _, entry := range entries {
		c, err := credential.Parse(entry)
		if err != nil {
			return nil, err
		}

		creds = append(creds, c)
	}

	slices.SortStableFunc(creds, func(a, b credential.Credential) int {
		if c := b.IssuanceDate.Compare(a.IssuanceDate); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return creds, nil
}
