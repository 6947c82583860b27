package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:             "development",
		Port:            "8080",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBDriver:        "postgres",
		DBPassword:      "secure-password",
		DBSSLMode:       "disable",
		SectorDocDir:    "data/sectors",
		SectorDocFormat: "xml",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"missing sector dir", func(c *Config) { c.SectorDocDir = "" }, "SECTOR_DOC_DIR is required"},
		{"unknown format", func(c *Config) { c.SectorDocFormat = "json" }, "SECTOR_DOC_FORMAT"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.JWTSecret = defaultJWTSecret
		}, "changed from the default"},
		{"sqlite in production", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.DBDriver = "sqlite"
		}, "sqlite is not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("SECTOR_DOC_FORMAT", "YAML")
	t.Setenv("SECTOR_DOC_DIR", "/tmp/bagportal-sectors")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "yaml", c.SectorDocFormat)
	assert.Equal(t, "/tmp/bagportal-sectors", c.SectorDocDir)
	assert.Equal(t, 10, c.AttachmentMaxSizeMB)
}

func TestLoadConfig_MissingProfile(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "no-such-profile")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestTrustedOrigins(t *testing.T) {
	c := &Config{AllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.TrustedOrigins())
}
