package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDatabase(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("database.path", filepath.Join(t.TempDir(), "hscode.db"))
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestLanguageCmd(t *testing.T) {
	useTempDatabase(t)

	assert.Equal(t, "en", strings.TrimSpace(execute(t, languageCmd())))
	assert.Contains(t, execute(t, languageCmd(), "JA"), "Language set to ja")
	assert.Equal(t, "ja", strings.TrimSpace(execute(t, languageCmd())))

	cmd := languageCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"fr"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestLoginLogoutQuota(t *testing.T) {
	useTempDatabase(t)

	assert.Contains(t, execute(t, quotaCmd()), "7 of 7 predictions left today (guest)")
	assert.Contains(t, execute(t, loginCmd()), "50 of 50 predictions left today (authenticated)")
	assert.Contains(t, execute(t, quotaCmd()), "(authenticated)")
	assert.Contains(t, execute(t, logoutCmd()), "Now using the guest quota")
}

func TestMigrateCmd(t *testing.T) {
	useTempDatabase(t)

	status := execute(t, migrateCmd(), "--status")
	assert.Contains(t, status, "Current version: 0")

	assert.Contains(t, execute(t, migrateCmd()), "schema version 2")
	assert.Contains(t, execute(t, migrateCmd(), "--status"), "Current version: 2")
}

func TestEphemeralStorage(t *testing.T) {
	useTempDatabase(t)
	viper.Set("database.ephemeral", true)

	assert.Contains(t, execute(t, languageCmd(), "id"), "Language set to id")
	assert.Equal(t, "en", strings.TrimSpace(execute(t, languageCmd())))
}
