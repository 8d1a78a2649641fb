package config

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// Storefront tunes the customer-facing service. By default the menu shows 12
// dishes per page, payment takes 2s and the success screen waits 3s before
// returning to the menu.
type Storefront struct {
	Common `yaml:"-"`

	CatalogURL       string `yaml:"catalog_url"`
	PublicCatalogURL string `yaml:"public_catalog_url"`

	PageSize      int           `yaml:"page_size"`
	CheckoutDelay time.Duration `yaml:"checkout_delay"`
	RedirectDelay time.Duration `yaml:"redirect_delay"`
	RedirectTo    string        `yaml:"redirect_to"`

	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
	SecureCookies  bool          `yaml:"secure_cookies"`

	Preview PreviewConfig `yaml:"preview"`
}

type PreviewConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`
}

func DefaultStorefront() Storefront {
	return Storefront{
		Common:           loadCommon("8083"),
		CatalogURL:       "http://localhost:8082",
		PublicCatalogURL: "",
		PageSize:         12,
		CheckoutDelay:    2 * time.Second,
		RedirectDelay:    3 * time.Second,
		RedirectTo:       "/menu",
		SessionIdleTTL:   24 * time.Hour,
		Preview:          PreviewConfig{Width: 400, Height: 300, Quality: 85},
	}
}

// LoadStorefront layers defaults, the optional YAML file named by
// STOREFRONT_CONFIG, then environment overrides, and validates the result.
func LoadStorefront() (Storefront, error) {
	LoadDotEnv()

	cfg := DefaultStorefront()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Storefront{}, err
		}
	}

	cfg.CatalogURL = Getenv("CATALOG_URL", cfg.CatalogURL)
	cfg.PublicCatalogURL = Getenv("PUBLIC_CATALOG_URL", cfg.PublicCatalogURL)
	cfg.PageSize = GetInt("PAGE_SIZE", cfg.PageSize)
	cfg.CheckoutDelay = GetDuration("CHECKOUT_DELAY", cfg.CheckoutDelay)
	cfg.RedirectDelay = GetDuration("REDIRECT_DELAY", cfg.RedirectDelay)
	cfg.RedirectTo = Getenv("REDIRECT_TO", cfg.RedirectTo)
	cfg.SessionIdleTTL = GetDuration("SESSION_IDLE_TTL", cfg.SessionIdleTTL)
	cfg.SecureCookies = GetBool("SECURE_COOKIES", cfg.SecureCookies)

	if cfg.PublicCatalogURL == "" {
		cfg.PublicCatalogURL = cfg.CatalogURL
	}

	if err := cfg.Validate(); err != nil {
		return Storefront{}, err
	}
	return cfg, nil
}

func (c *Storefront) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

func (c Storefront) Validate() error {
	switch {
	case c.CatalogURL == "":
		return errors.New("catalog_url is required")
	case c.PageSize <= 0:
		return errors.Errorf("page_size must be positive, got %d", c.PageSize)
	case c.CheckoutDelay < 0 || c.RedirectDelay < 0:
		return errors.New("delays must not be negative")
	case c.SessionIdleTTL <= 0:
		return errors.Errorf("session_idle_ttl must be positive, got %s", c.SessionIdleTTL)
	case c.RedirectTo == "":
		return errors.New("redirect_to is required")
	case c.Preview.Quality < 0 || c.Preview.Quality > 100:
		return errors.Errorf("preview quality must be within 0..100, got %d", c.Preview.Quality)
	}
	return nil
}
