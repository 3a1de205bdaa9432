// Package config loads runtime settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBMaxConns     int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`

	JWTSecret            string        `envconfig:"JWT_SECRET"`
	JWTIssuer            string        `envconfig:"JWT_ISSUER" default:"backoffice-api"`
	TokenTTL             time.Duration `envconfig:"TOKEN_TTL" default:"8h"`
	AuthzExpandHierarchy bool          `envconfig:"AUTHZ_EXPAND_HIERARCHY" default:"false"`
	LoginRateLimit       float64       `envconfig:"LOGIN_RATE_LIMIT" default:"5"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the peer address is the client address.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SnapshotCron  string `envconfig:"SNAPSHOT_CRON" default:"@daily"`
	SnapshotTable string `envconfig:"SNAPSHOT_TABLE"`
	AWSRegion     string `envconfig:"AWS_REGION"`

	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`

	// EphemeralSecret is set when a development run generated its own JWT
	// secret. Tokens do not survive a restart in that case.
	EphemeralSecret bool `ignored:"true"`
}

// Load reads the environment and refuses configurations that would run with
// an unknown signing key.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	switch c.AppEnv {
	case "":
		return errors.New("APP_ENV must be set")
	case "development", "staging", "production":
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.AppEnv)
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET must be provided outside development")
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate development secret: %w", err)
		}
		c.JWTSecret = secret
		c.EphemeralSecret = true
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be provided")
	}
	if c.SnapshotTable != "" && c.AWSRegion == "" {
		return errors.New("AWS_REGION is required when SNAPSHOT_TABLE is set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	proxies := c.TrustedProxies[:0]
	for _, cidr := range c.TrustedProxies {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		proxies = append(proxies, cidr)
	}
	c.TrustedProxies = proxies
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) Addr() string { return ":" + c.Port }

func (c *Config) ArchiveEnabled() bool { return c.SnapshotTable != "" }

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
