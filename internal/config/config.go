package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	StoreAPI   StoreAPIConfig
	Dashboard  DashboardConfig
	TokenStore TokenStoreConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Bot        BotConfig
	Poll       PollConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type StoreAPIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 disables the client-side timeout
}

type DashboardConfig struct {
	Key           string
	DefaultPeriod string
}

type TokenStoreConfig struct {
	Backend string // "file", "memory", "redis", "mysql"
	File    string
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type BotConfig struct {
	Token      string
	WebhookURL string
	AdminIDs   []string
	UpdateMode string // "auto", "polling", "webhook"
}

type PollConfig struct {
	Spec string
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("STORE_API_URL", "http://localhost:8787")
	viper.SetDefault("STORE_API_TIMEOUT", "0s")
	viper.SetDefault("DEFAULT_PERIOD", "30d")
	viper.SetDefault("TOKEN_STORE", "file")
	viper.SetDefault("TOKEN_FILE", ".storedash_token")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BOT_UPDATE_MODE", "auto")
	viper.SetDefault("POLL_SPEC", "0 * * * * *")
	viper.SetDefault("LOG_MAX_SIZE_MB", 50)
	viper.SetDefault("LOG_MAX_BACKUPS", 5)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 28)

	timeout, err := time.ParseDuration(viper.GetString("STORE_API_TIMEOUT"))
	if err != nil || timeout < 0 {
		timeout = 0
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		StoreAPI: StoreAPIConfig{
			BaseURL: strings.TrimRight(viper.GetString("STORE_API_URL"), "/"),
			Timeout: timeout,
		},
		Dashboard: DashboardConfig{
			Key:           viper.GetString("DASHBOARD_KEY"),
			DefaultPeriod: viper.GetString("DEFAULT_PERIOD"),
		},
		TokenStore: TokenStoreConfig{
			Backend: strings.ToLower(strings.TrimSpace(viper.GetString("TOKEN_STORE"))),
			File:    viper.GetString("TOKEN_FILE"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Bot: BotConfig{
			Token:      viper.GetString("BOT_TOKEN"),
			WebhookURL: viper.GetString("BOT_WEBHOOK_URL"),
			AdminIDs:   splitList(viper.GetString("BOT_ADMIN_ID")),
			UpdateMode: viper.GetString("BOT_UPDATE_MODE"),
		},
		Poll: PollConfig{
			Spec: viper.GetString("POLL_SPEC"),
		},
		Log: LogConfig{
			File:       viper.GetString("LOG_FILE"),
			MaxSizeMB:  viper.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}

	if cfg.Dashboard.DefaultPeriod == "" {
		cfg.Dashboard.DefaultPeriod = "30d"
	}
	if cfg.TokenStore.Backend == "mysql" && cfg.Database.Name == "" {
		log.Println("WARNING: TOKEN_STORE=mysql but DB_NAME is not set")
	}
	if cfg.Bot.Token == "" {
		log.Println("WARNING: BOT_TOKEN is not set, Telegram admin bot disabled")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database section, for --bootstrap-db.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

// IsDevelopment reports whether APP_ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Env, "development")
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
