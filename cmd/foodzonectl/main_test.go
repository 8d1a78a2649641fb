package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FoodZone/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	const secret = "cli-secret-cli-secret-cli-secret-cli!"
	t.Setenv("JWT_SECRET", secret)

	out, err := run(t, "token", "--email", "chef@foodzone.test", "--role", "admin", "--user-id", "u_7")
	require.NoError(t, err)

	claims, err := auth.NewTokenMaker(secret).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u_7", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = run(t, "token", "--email", "x@y.z", "--role", "root")
	assert.Error(t, err)
}

func TestSeedCmd_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - name: Mint Jelly
    description: Cool and sweet
    type: Dessert
    price: 4.5
`), 0o600))

	out, err := run(t, "seed", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Mint Jelly\tDessert\t4.50")
}

func TestMigrateCmd_NeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
