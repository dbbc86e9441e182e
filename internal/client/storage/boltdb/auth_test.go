package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalog/vitalog/internal/client/storage"
)

func TestCredentials_SaveGetDelete(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	// nothing stored yet
	_, err := store.GetCredentials(ctx)
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)

	creds := &storage.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}
	require.NoError(t, store.SaveCredentials(ctx, creds))

	got, err := store.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	// save overwrites wholesale
	replacement := &storage.Credentials{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
	}
	require.NoError(t, store.SaveCredentials(ctx, replacement))

	got, err = store.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	require.NoError(t, store.DeleteCredentials(ctx))
	_, err = store.GetCredentials(ctx)
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)

	// delete is idempotent
	assert.NoError(t, store.DeleteCredentials(ctx))
}

func TestDeviceID_SaveGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetDeviceID(ctx)
	assert.ErrorIs(t, err, storage.ErrDeviceIDNotFound)

	require.NoError(t, store.SaveDeviceID(ctx, "d-123"))

	got, err := store.GetDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "d-123", got)
}

func TestAuth_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir() + "/client.db"

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveDeviceID(ctx, "device-abc"))
	require.NoError(t, store.SaveCredentials(ctx, &storage.Credentials{
		AccessToken:  "a",
		RefreshToken: "r",
	}))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	deviceID, err := reopened.GetDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device-abc", deviceID)

	creds, err := reopened.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", creds.AccessToken)
}
