package model

import (
	"fmt"
	"strings"
)

// IdentityClass determines which daily quota ceiling applies to a requester.
type IdentityClass string

// Identity classes.
const (
	IdentityGuest         IdentityClass = "guest"
	IdentityAuthenticated IdentityClass = "authenticated"
)

// ParseIdentityClass converts a string into an IdentityClass.
func ParseIdentityClass(s string) (IdentityClass, error) {
	switch IdentityClass(strings.ToLower(strings.TrimSpace(s))) {
	case IdentityGuest, "":
		return IdentityGuest, nil
	case IdentityAuthenticated:
		return IdentityAuthenticated, nil
	default:
		return "", fmt.Errorf("unknown identity class: %q", s)
	}
}

// Language selects the language of generated text and report labels.
type Language string

// Supported languages.
const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
	LanguageJapanese   Language = "ja"
)

// Languages lists every supported language in display order.
var Languages = []Language{LanguageEnglish, LanguageIndonesian, LanguageJapanese}

// ParseLanguage converts a language code into a Language. Empty means English.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish, "":
		return LanguageEnglish, nil
	case LanguageIndonesian:
		return LanguageIndonesian, nil
	case LanguageJapanese:
		return LanguageJapanese, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", s)
	}
}
