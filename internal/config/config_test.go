package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStorefront_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("CATALOG_URL", "")
	t.Setenv("PUBLIC_CATALOG_URL", "")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
	assert.Equal(t, 3*time.Second, cfg.RedirectDelay)
	assert.Equal(t, "/menu", cfg.RedirectTo)
	assert.Equal(t, cfg.CatalogURL, cfg.PublicCatalogURL)
}

func TestLoadStorefront_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog_url: http://catalog.internal:8082
page_size: 6
checkout_delay: 500ms
preview:
  width: 200
`), 0o600))

	t.Setenv("STOREFRONT_CONFIG", path)
	t.Setenv("CATALOG_URL", "")
	t.Setenv("PUBLIC_CATALOG_URL", "")
	t.Setenv("PAGE_SIZE", "8")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.internal:8082", cfg.CatalogURL)
	assert.Equal(t, 8, cfg.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.CheckoutDelay)
	assert.Equal(t, 200, cfg.Preview.Width)
	assert.Equal(t, 300, cfg.Preview.Height)
}

func TestLoadStorefront_BadFile(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadStorefront()
	assert.Error(t, err)
}

func TestStorefrontValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Storefront)
	}{
		{"no catalog", func(c *Storefront) { c.CatalogURL = "" }},
		{"zero page size", func(c *Storefront) { c.PageSize = 0 }},
		{"negative delay", func(c *Storefront) { c.CheckoutDelay = -time.Second }},
		{"zero idle ttl", func(c *Storefront) { c.SessionIdleTTL = 0 }},
		{"negative idle ttl", func(c *Storefront) { c.SessionIdleTTL = -time.Minute }},
		{"no redirect", func(c *Storefront) { c.RedirectTo = "" }},
		{"quality", func(c *Storefront) { c.Preview.Quality = 101 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultStorefront()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultStorefront().Validate())
}

func TestLoadAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := LoadAuth()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ADMIN_EMAILS", " chef@foodzone.test, ,owner@foodzone.test")
	t.Setenv("TOKEN_TTL", "garbage")
	cfg, err := LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, []string{"chef@foodzone.test", "owner@foodzone.test"}, cfg.AdminEmails)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
}

func TestLoadStorefront_SessionAndRedirectFromEnv(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("SESSION_IDLE_TTL", "2h")
	t.Setenv("REDIRECT_TO", "/menu?category=dessert")

	cfg, err := LoadStorefront()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, "/menu?category=dessert", cfg.RedirectTo)

	t.Setenv("SESSION_IDLE_TTL", "0s")
	_, err = LoadStorefront()
	assert.Error(t, err)
}
