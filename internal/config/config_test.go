package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "30d", cfg.Dashboard.DefaultPeriod)
				assert.Equal(t, "file", cfg.TokenStore.Backend)
				assert.Equal(t, time.Duration(0), cfg.StoreAPI.Timeout)
				assert.Equal(t, "0 * * * * *", cfg.Poll.Spec)
				assert.False(t, cfg.IsDevelopment())
			},
		},
		{
			name: "Overrides",
			envVars: map[string]string{
				"APP_PORT":          "9090",
				"APP_ENV":           "development",
				"STORE_API_URL":     "https://shop.example.com/",
				"STORE_API_TIMEOUT": "15s",
				"TOKEN_STORE":       " Redis ",
				"BOT_ADMIN_ID":      "111, 222,,",
				"DEFAULT_PERIOD":    "7d",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.IsDevelopment())
				assert.Equal(t, "https://shop.example.com", cfg.StoreAPI.BaseURL)
				assert.Equal(t, 15*time.Second, cfg.StoreAPI.Timeout)
				assert.Equal(t, "redis", cfg.TokenStore.Backend)
				assert.Equal(t, []string{"111", "222"}, cfg.Bot.AdminIDs)
				assert.Equal(t, "7d", cfg.Dashboard.DefaultPeriod)
			},
		},
		{
			name: "Invalid timeout falls back to none",
			envVars: map[string]string{
				"STORE_API_TIMEOUT": "soon",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Duration(0), cfg.StoreAPI.Timeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "3306", Name: "dash", User: "u", Pass: "p", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/dash?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}
