// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/oauthdemo/internal/users"
)

var _ users.Repository = &FakeRepository{}

// FakeRepository records every lookup and answers with Accounts, or with Err when set.
type FakeRepository struct {
	tb testing.TB

	Accounts map[string]users.Account
	Err      error
	Lookups  []string
}

func NewFakeRepository(tb testing.TB, accounts ...users.Account) *FakeRepository {
	tb.Helper()

	indexed := make(map[string]users.Account, len(accounts))
	for _, account := range accounts {
		indexed[account.Username] = account
	}
	return &FakeRepository{tb: tb, Accounts: indexed}
}

func NewFakeRepositoryWithError(tb testing.TB, err error) *FakeRepository {
	tb.Helper()

	repository := NewFakeRepository(tb)
	repository.Err = err
	return repository
}

func (f *FakeRepository) Get(_ context.Context, username string) (*users.Account, error) {
	f.tb.Helper()
	f.Lookups = append(f.Lookups, username)
	if f.Err != nil {
		return nil, f.Err
	}

	account, ok := f.Accounts[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return &account, nil
}
