package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("INSTITUTION_DOMAIN", "")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Contains(t, cfg.DatabaseDSN, "tcp(localhost:3306)")
	assert.Equal(t, "nitt.edu", cfg.InstitutionDomain)
	assert.True(t, cfg.RequireEmailConfirmation)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/rn")
	t.Setenv("INSTITUTION_DOMAIN", "Example.EDU")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("APP_URL", "https://rn.example/")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@db:5432/rn", cfg.DatabaseDSN)
	assert.Equal(t, "example.edu", cfg.InstitutionDomain)
	assert.False(t, cfg.RequireEmailConfirmation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "https://rn.example", cfg.AppURL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoad_MySQLDSNFallback(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("MYSQL_DSN", "root@tcp(mysql:3306)/x")

	assert.Equal(t, "root@tcp(mysql:3306)/x", Load().DatabaseDSN)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "development", JWTSecret: DefaultJWTSecret}
	assert.NoError(t, cfg.Validate())

	cfg.Env = "production"
	assert.True(t, cfg.IsProduction())
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.TrustedProxies = []string{"10.0.0.0/8", "not-a-cidr"}
	assert.ErrorContains(t, cfg.Validate(), "TRUSTED_PROXIES")
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.0/24")
	cfg := Load()
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.0/24"}, cfg.TrustedProxies)
}
