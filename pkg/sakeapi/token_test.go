package sakeapi_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochoko/admin/pkg/sakeapi"
)

func TestFileTokenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := sakeapi.NewFileTokenStore(path)

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no token")

	require.NoError(t, store.Save(ctx, "tok-file"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"admin_token":"tok-file"}`, string(data))

	// A fresh store over the same file sees the token.
	token, err = sakeapi.NewFileTokenStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-file", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing twice is fine")

	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := sakeapi.NewFileTokenStore(path).Load(context.Background())
	require.Error(t, err)
}

func TestClient_TokenHydratesLazily(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sakeapi.NewMemoryTokenStore()
	require.NoError(t, store.Save(ctx, "persisted"))

	client := sakeapi.New("", sakeapi.WithTokenStore(store))
	token, err := client.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)

	// Once hydrated, later store writes by others are not re-read.
	require.NoError(t, store.Save(ctx, "other"))
	token, err = client.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)

	require.NoError(t, client.SetToken(ctx, ""))
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.False(t, client.HasToken(ctx))
}

func TestEnums(t *testing.T) {
	t.Parallel()

	assert.Len(t, sakeapi.TokuteiMeishoValues, 9)
	for _, v := range sakeapi.TokuteiMeishoValues {
		assert.True(t, v.Valid(), v)
		assert.NotEqual(t, string(v), v.Label())
	}
	assert.Equal(t, "純米大吟醸", sakeapi.JunmaiDaiginjo.Label())
	assert.False(t, sakeapi.TokuteiMeisho("premium").Valid())
	assert.Equal(t, "premium", sakeapi.TokuteiMeisho("premium").Label())

	assert.Equal(t, "生詰", sakeapi.Namazume.Label())
	assert.Equal(t, "無濾過", sakeapi.Muroka.Label())

	assert.Equal(t, sakeapi.EncodingUTF8SIG, sakeapi.Encoding("").OrDefault())
	assert.Equal(t, sakeapi.EncodingCP932, sakeapi.EncodingCP932.OrDefault())
}

func TestUserAndBrewery(t *testing.T) {
	t.Parallel()

	name := "蔵元"
	assert.Equal(t, "蔵元", sakeapi.User{Username: "kura", DisplayName: &name}.Label())
	assert.Equal(t, "kura", sakeapi.User{Username: "kura"}.Label())
	assert.True(t, sakeapi.User{IsSuperuser: true}.IsAdmin())
	assert.False(t, sakeapi.User{IsActive: true}.IsAdmin())

	assert.False(t, sakeapi.Brewery{Prefecture: sakeapi.UnknownPrefecture}.HasKnownPrefecture())
	assert.False(t, sakeapi.Brewery{}.HasKnownPrefecture())
	assert.True(t, sakeapi.Brewery{Prefecture: "山口県"}.HasKnownPrefecture())
}
