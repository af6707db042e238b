// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/oauthdemo/internal/users"
)

func TestFakeRepository(t *testing.T) {
	t.Parallel()

	account := users.Account{User: users.User{Username: "jane"}, HashedPassword: "fakehashedpw"}
	repository := NewFakeRepository(t, account)

	found, err := repository.Get(t.Context(), "jane")
	require.NoError(t, err)
	assert.Equal(t, &account, found)

	_, err = repository.Get(t.Context(), "missing")
	require.ErrorIs(t, err, users.ErrUserNotFound)
	assert.Equal(t, []string{"jane", "missing"}, repository.Lookups)
}

func TestFakeRepositoryWithError(t *testing.T) {
	t.Parallel()

	repository := NewFakeRepositoryWithError(t, assert.AnError)
	_, err := repository.Get(t.Context(), "jane")
	require.ErrorIs(t, err, assert.AnError)
}
