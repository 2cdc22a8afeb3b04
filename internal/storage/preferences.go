package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hscode/internal/model"
)

// KV is the key-value contract shared by SQLiteStorage and MemoryStorage.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

var (
	_ KV = (*SQLiteStorage)(nil)
	_ KV = (*MemoryStorage)(nil)
)

// Preference keys.
const (
	KeyIdentity = "pref.identity"
	KeyLanguage = "pref.language"
)

// Preferences reads and writes user preferences in a KV store. Unreadable or
// unknown values fall back to defaults.
type Preferences struct {
	store  KV
	logger *slog.Logger
}

// NewPreferences wraps store.
func NewPreferences(store KV, logger *slog.Logger) *Preferences {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{store: store, logger: logger}
}

// Identity returns the stored identity class, guest by default.
func (p *Preferences) Identity(ctx context.Context) model.IdentityClass {
	raw, ok, err := p.store.Get(ctx, KeyIdentity)
	if err != nil {
		p.logger.Warn("failed to read identity preference", "error", err)
		return model.IdentityGuest
	}
	if !ok {
		return model.IdentityGuest
	}
	class, err := model.ParseIdentityClass(raw)
	if err != nil {
		p.logger.Warn("ignoring stored identity", "value", raw, "error", err)
		return model.IdentityGuest
	}
	return class
}

// SetIdentity persists class.
func (p *Preferences) SetIdentity(ctx context.Context, class model.IdentityClass) error {
	if err := p.store.Set(ctx, KeyIdentity, string(class)); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// Language returns the stored language, English by default.
func (p *Preferences) Language(ctx context.Context) model.Language {
	raw, ok, err := p.store.Get(ctx, KeyLanguage)
	if err != nil {
		p.logger.Warn("failed to read language preference", "error", err)
		return model.LanguageEnglish
	}
	if !ok {
		return model.LanguageEnglish
	}
	lang, err := model.ParseLanguage(raw)
	if err != nil {
		p.logger.Warn("ignoring stored language", "value", raw, "error", err)
		return model.LanguageEnglish
	}
	return lang
}

// SetLanguage persists lang.
func (p *Preferences) SetLanguage(ctx context.Context, lang model.Language) error {
	if err := p.store.Set(ctx, KeyLanguage, string(lang)); err != nil {
		return fmt.Errorf("failed to save language: %w", err)
	}
	return nil
}
