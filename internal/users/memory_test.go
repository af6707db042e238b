// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRepository(t *testing.T) {
	t.Parallel()

	repository := NewFakeRepository()

	testCases := map[string]struct {
		username        string
		expectedAccount *Account
		expectedError   error
	}{
		"active user": {
			username: "johndoe",
			expectedAccount: &Account{
				User:           User{Username: "johndoe", FullName: "John Doe", Email: "johndoe@example.com"},
				HashedPassword: "fakehashedsecret",
			},
		},
		"disabled user": {
			username: "alice",
			expectedAccount: &Account{
				User:           User{Username: "alice", FullName: "Alice Wonderson", Email: "alice@example.com", Disabled: true},
				HashedPassword: "fakehashedsecret2",
			},
		},
		"unknown user": {
			username:      "bob",
			expectedError: ErrUserNotFound,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			account, err := repository.Get(t.Context(), test.username)
			if test.expectedError != nil {
				require.ErrorIs(t, err, test.expectedError)
				assert.Nil(t, account)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedAccount, account)
		})
	}
}

func TestAccountsAreCopied(t *testing.T) {
	t.Parallel()

	repository := NewMemoryRepository(Account{User: User{Username: "jane"}})
	account, err := repository.Get(t.Context(), "jane")
	require.NoError(t, err)

	account.Disabled = true
	again, err := repository.Get(t.Context(), "jane")
	require.NoError(t, err)
	assert.False(t, again.Disabled)
}

func TestAccountSerializationHidesPassword(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Account{
		User:           User{Username: "jane", Email: "jane@example.com"},
		HashedPassword: "fakehashedpw",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"jane","email":"jane@example.com","disabled":false}`, string(data))
}
