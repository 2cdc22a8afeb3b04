package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HSCODE_TEST_DIR", "/tmp/hscode")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tilde", "~", home},
		{"tilde prefix", "~/data/db.sqlite", filepath.Join(home, "data/db.sqlite")},
		{"env var", "$HSCODE_TEST_DIR/out", "/tmp/hscode/out"},
		{"absolute", "/var/lib/hscode", "/var/lib/hscode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path := ExpandPath(DefaultDatabasePath())
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "hscode.db", filepath.Base(path))
}
