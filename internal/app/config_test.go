package app

import (
	"testing"
	"time"

	"github.com/layer-3/zkauth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "STORE_DRIVER", "CHALLENGE_TTL", "AUTH_ID_LENGTH", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, ":41337", cfg.Addr)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, service.DefaultChallengeTTL, cfg.ChallengeTTL)
	assert.Equal(t, service.DefaultAuthIDLength, cfg.AuthIDLength)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ADDR", "127.0.0.1:9000")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CHALLENGE_TTL", "90s")
	t.Setenv("SESSION_TTL", "120")
	t.Setenv("AUTH_ID_LENGTH", "24")
	t.Setenv("SESSION_ID_LENGTH", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, StoreDriverRedis, cfg.StoreDriver)
	assert.Equal(t, 90*time.Second, cfg.ChallengeTTL)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 24, cfg.AuthIDLength)
	assert.Equal(t, service.DefaultSessionIDLength, cfg.SessionIDLength)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			StoreDriver:     StoreDriverMemory,
			ChallengeTTL:    time.Minute,
			SessionTTL:      time.Minute,
			AuthIDLength:    16,
			SessionIDLength: 32,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "etcd" }, `unknown STORE_DRIVER "etcd"`},
		{"redis without url", func(c *Config) { c.StoreDriver = StoreDriverRedis }, "REDIS_URL is required"},
		{"zero challenge ttl", func(c *Config) { c.ChallengeTTL = 0 }, "CHALLENGE_TTL must be positive"},
		{"negative session ttl", func(c *Config) { c.SessionTTL = -time.Second }, "SESSION_TTL must be positive"},
		{"short auth id", func(c *Config) { c.AuthIDLength = 8 }, "AUTH_ID_LENGTH must be at least"},
		{"short session id", func(c *Config) { c.SessionIDLength = 4 }, "SESSION_ID_LENGTH must be at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
