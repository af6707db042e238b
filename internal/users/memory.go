// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package users

import (
	"context"
	"fmt"
)

var _ Repository = &MemoryRepository{}

// MemoryRepository keeps a fixed set of accounts in memory.
type MemoryRepository struct {
	accounts map[string]Account
}

// NewMemoryRepository returns a repository holding accounts, indexed by username.
func NewMemoryRepository(accounts ...Account) *MemoryRepository {
	indexed := make(map[string]Account, len(accounts))
	for _, account := range accounts {
		indexed[account.Username] = account
	}

	return &MemoryRepository{accounts: indexed}
}

// NewFakeRepository returns the demo accounts: johndoe is active while alice is disabled.
func NewFakeRepository() *MemoryRepository {
	return NewMemoryRepository(
		Account{
			User: User{
				Username: "johndoe",
				FullName: "John Doe",
				Email:    "johndoe@example.com",
			},
			HashedPassword: "fakehashedsecret",
		},
		Account{
			User: User{
				Username: "alice",
				FullName: "Alice Wonderson",
				Email:    "alice@example.com",
				Disabled: true,
			},
			HashedPassword: "fakehashedsecret2",
		},
	)
}

// Get implements Repository. The returned account is a copy.
func (r *MemoryRepository) Get(_ context.Context, username string) (*Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}

	return &account, nil
}

