package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storedash/internal/bootstrap"
	"storedash/internal/bot"
	"storedash/internal/config"
	cronpkg "storedash/internal/cron"
	"storedash/internal/dashboard"
	"storedash/internal/logger"
	"storedash/internal/pkg/dedup"
	"storedash/internal/pkg/telegram"
	"storedash/internal/repository"
	"storedash/internal/router"
	"storedash/internal/session"
	"storedash/internal/storeapi"
)

func main() {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.IsDevelopment(), cfg.Log)
	if err != nil {
		log = logger.Fallback()
		log.Warn("Falling back to stderr logger", zap.Error(err))
	}
	defer log.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(log); err != nil {
			log.Fatal("Database bootstrap failed", zap.Error(err))
		}
		log.Info("Database bootstrap completed")
		return
	}

	// --- Redis (optional) ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	// --- Session ---
	tokens, err := newTokenStore(cfg, redisClient)
	if err != nil {
		log.Fatal("Failed to open token store", zap.String("backend", cfg.TokenStore.Backend), zap.Error(err))
	}
	sess := session.New(tokens, log)

	// --- Dashboard ---
	client := storeapi.New(cfg.StoreAPI.BaseURL, cfg.StoreAPI.Timeout, sess, log)
	ctrl := dashboard.New(client, sess, cfg.Dashboard.DefaultPeriod, log)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	active, err := ctrl.Boot(bootCtx, argValue("--token"))
	cancelBoot()
	switch {
	case err != nil:
		log.Warn("Stored token rejected, waiting for login", zap.String("reason", storeapi.UserMessage(err)))
	case active:
		log.Info("Dashboard session restored", zap.Stringer("kpis", ctrl.KPIs()))
	default:
		log.Info("No token yet, waiting for login")
	}

	// --- Deduper (Redis with in-memory fallback) ---
	deduper, dedupErr := dedup.New(context.Background(), redisClient, "storedash", 24*time.Hour)
	if dedupErr != nil {
		log.Warn("Redis unavailable for dedup, using in-memory fallback", zap.Error(dedupErr))
	}

	// --- Bot ---
	var teleBot *bot.Bot
	var scheduler *cronpkg.Scheduler
	if cfg.Bot.Token != "" {
		teleBot, err = bot.New(cfg, ctrl, log)
		if err != nil {
			log.Fatal("Failed to create bot", zap.Error(err))
		}

		notifier := bot.NewNotifier(telegram.NewBotAPI(cfg.Bot.Token), cfg.Bot.AdminIDs, log)
		scheduler = cronpkg.New(cfg.Poll.Spec, ctrl, notifier, deduper, log)
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("BOT_TOKEN not set, Telegram bot and payment poller disabled")
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	router.Setup(e, ctrl, log, cfg.Dashboard.Key, deduper, webhookHandler(teleBot))

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info("Starting storedash server", zap.String("addr", addr), zap.String("store_api", cfg.StoreAPI.BaseURL))
		if err := e.Start(addr); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	if teleBot != nil {
		go teleBot.Start()
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	if teleBot != nil {
		teleBot.Stop()
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func webhookHandler(b *bot.Bot) http.Handler {
	if b == nil {
		return nil
	}
	return b.WebhookHandler()
}

func newTokenStore(cfg *config.Config, redisClient *redis.Client) (session.TokenStore, error) {
	switch strings.ToLower(cfg.TokenStore.Backend) {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("TOKEN_STORE=redis needs REDIS_ADDR")
		}
		return session.NewRedisStore(redisClient), nil
	case "mysql":
		db, err := config.NewDatabase(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := bootstrap.Migrate(db); err != nil {
			return nil, err
		}
		return session.NewSettingStore(repository.NewSettingRepository(db)), nil
	case "", "file":
		return session.NewFileStore(cfg.TokenStore.File), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore.Backend)
	}
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

// argValue returns the value of a --name=value argument.
func argValue(name string) string {
	for _, arg := range os.Args[1:] {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v
		}
	}
	return ""
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	logger.Info("Schema migration completed")
	return nil
}
