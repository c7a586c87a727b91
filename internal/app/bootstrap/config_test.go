package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "freightdesk",
		SessionKey:         "test-session-key-0123456789abcdef0123456789",
		TokenCookie:        "token",
		RoleCookie:         "role",
		LoginPath:          edgegate.DefaultLoginPath,
		ProtectedPrefixes:  edgegate.DefaultPatterns,
		SessionIdleTimeout: 30 * time.Minute,
		SessionSweepEvery:  5 * time.Minute,
		LoginRatePerMinute: 10,
		LoginBurst:         5,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	assert.NoError(t, ValidateConfig(dev, validConfig(), testLogger()))

	tests := map[string]func(*AppConfig){
		"bad uri":            func(c *AppConfig) { c.MongoURI = "postgres://nope" },
		"no database":        func(c *AppConfig) { c.MongoDatabase = "" },
		"relative pattern":   func(c *AppConfig) { c.ProtectedPrefixes = []string{"admin/*"} },
		"root pattern":       func(c *AppConfig) { c.ProtectedPrefixes = []string{"/*"} },
		"relative login":     func(c *AppConfig) { c.LoginPath = "auth/login" },
		"same cookie names":  func(c *AppConfig) { c.RoleCookie = "token" },
		"zero idle timeout":  func(c *AppConfig) { c.SessionIdleTimeout = 0 },
		"zero login rate":    func(c *AppConfig) { c.LoginRatePerMinute = 0 },
		"admin without pass": func(c *AppConfig) { c.BootstrapAdminLogin = "root" },
		"bad audit target":   func(c *AppConfig) { c.AuditLogOperations = "syslog" },
	}
	for name, mutate := range tests {
		cfg := validConfig()
		mutate(&cfg)
		assert.Error(t, ValidateConfig(dev, cfg, testLogger()), name)
	}
}

func TestValidateConfig_ProdRejectsDevKey(t *testing.T) {
	cfg := validConfig()
	cfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	assert.NoError(t, ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger()))
	assert.Error(t, ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, testLogger()))
}
