package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natindo/CountdownBot/internal/bot"
	"github.com/natindo/CountdownBot/internal/config"
	"github.com/natindo/CountdownBot/internal/database"
	"github.com/natindo/CountdownBot/internal/logger"
	"github.com/natindo/CountdownBot/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Читаем конфиг (файл или env)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Поднимаем хранилище событий
	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	store := services.NewEventStore(backend, services.Policy(cfg.Storage.DuplicatePolicy), log)

	// 3. Создаём инстанс бота
	botAPI, err := bot.NewBot(cfg.TelegramToken, cfg.BotDebug, log)
	if err != nil {
		log.Error("bot init failed", "error", err)
		os.Exit(1)
	}

	refresh := services.RefreshConfig{
		PollInterval:  cfg.Refresh.PollInterval,
		FinalInterval: cfg.Refresh.FinalInterval,
		FinalWindow:   cfg.Refresh.FinalWindow,
	}
	sched := services.NewScheduler(store, bot.NewGateway(botAPI), refresh, log)

	// 4. Запускаем чистку просроченных записей
	sweeper, err := services.NewSweeper(store, cfg.Storage.PurgeSchedule, cfg.Storage.PurgeGrace, log)
	if err != nil {
		log.Error("sweeper init failed", "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// 5. Запускаем основной цикл обработки
	log.Info("starting the bot", "backend", cfg.Storage.Backend, "policy", cfg.Storage.DuplicatePolicy)
	handler := bot.NewHandler(botAPI, store, sched, log)
	if err := bot.Run(ctx, botAPI, handler); err != nil && ctx.Err() == nil {
		log.Error("bot stopped", "error", err)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Wait(waitCtx); err != nil {
		log.Error("refresh tasks did not stop in time", "active", sched.Active())
	}
	log.Info("bot exited")
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.Backend, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := database.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil

	case config.BackendRedis:
		rdb, err := database.ConnectRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "error", err)
			}
		}
		return database.NewRedisStore(rdb, cfg.Storage.PurgeGrace), closeFn, nil

	default:
		return database.NewMemoryStore(), func() {}, nil
	}
}
