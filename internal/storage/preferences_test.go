package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/hscode/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesDefaults(t *testing.T) {
	prefs := NewPreferences(NewMemoryStorage(), nil)
	ctx := context.Background()

	assert.Equal(t, model.IdentityGuest, prefs.Identity(ctx))
	assert.Equal(t, model.LanguageEnglish, prefs.Language(ctx))
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := NewMemoryStorage()
	prefs := NewPreferences(store, nil)
	ctx := context.Background()

	require.NoError(t, prefs.SetIdentity(ctx, model.IdentityAuthenticated))
	require.NoError(t, prefs.SetLanguage(ctx, model.LanguageJapanese))

	assert.Equal(t, model.IdentityAuthenticated, prefs.Identity(ctx))
	assert.Equal(t, model.LanguageJapanese, prefs.Language(ctx))
}

func TestPreferencesIgnoreCorruptValues(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyIdentity, "superuser"))
	require.NoError(t, store.Set(ctx, KeyLanguage, "klingon"))

	prefs := NewPreferences(store, nil)
	assert.Equal(t, model.IdentityGuest, prefs.Identity(ctx))
	assert.Equal(t, model.LanguageEnglish, prefs.Language(ctx))
}
