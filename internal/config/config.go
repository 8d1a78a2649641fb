// Package config loads service settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables always win over it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const minJWTSecretLen = 32

// Common holds the settings every service reads.
type Common struct {
	Port         string
	DatabaseURL  string
	AutoMigrate  bool
	MetricsOn    bool
	MetricsToken string
}

type Auth struct {
	Common
	JWTSecret   string
	AdminEmails []string
	TokenTTL    time.Duration

	SecureCookies bool
}

type Catalog struct {
	Common
	// SeedFile is a YAML menu loaded into an empty store at startup.
	SeedFile string
}

type Gateway struct {
	Common
	JWTSecret     string
	AuthURL       string
	CatalogURL    string
	StorefrontURL string
}

// LoadDotEnv loads .env once; a missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func loadCommon(defPort string) Common {
	return Common{
		Port:         Getenv("PORT", defPort),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		AutoMigrate:  GetBool("AUTO_MIGRATE", false),
		MetricsOn:    GetBool("METRICS_ENABLED", true),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
	}
}

func LoadAuth() (Auth, error) {
	LoadDotEnv()

	cfg := Auth{
		Common:      loadCommon("8081"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmails: GetList("ADMIN_EMAILS"),
		TokenTTL:    GetDuration("TOKEN_TTL", 15*time.Minute),

		SecureCookies: GetBool("SECURE_COOKIES", false),
	}
	if len(cfg.JWTSecret) < minJWTSecretLen {
		return Auth{}, errors.Errorf("JWT_SECRET is required and must be at least %d chars", minJWTSecretLen)
	}
	return cfg, nil
}

func LoadCatalog() (Catalog, error) {
	LoadDotEnv()
	return Catalog{
		Common:   loadCommon("8082"),
		SeedFile: os.Getenv("SEED_FILE"),
	}, nil
}

func LoadGateway() (Gateway, error) {
	LoadDotEnv()

	cfg := Gateway{
		Common:        loadCommon("8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AuthURL:       Getenv("AUTH_URL", "http://auth:8081"),
		CatalogURL:    Getenv("CATALOG_URL", "http://catalog:8082"),
		StorefrontURL: Getenv("STOREFRONT_URL", "http://storefront:8083"),
	}
	if len(cfg.JWTSecret) < minJWTSecretLen {
		return Gateway{}, errors.Errorf("JWT_SECRET is required and must be at least %d chars", minJWTSecretLen)
	}
	return cfg, nil
}

func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func GetBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func GetInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetList splits a comma separated variable, dropping blanks.
func GetList(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
