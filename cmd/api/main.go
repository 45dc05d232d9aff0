package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/audit-ai/cro-backend/config"
	cronjob "github.com/audit-ai/cro-backend/internal/audit/cron"
	auditrepo "github.com/audit-ai/cro-backend/internal/audit/repository"
	"github.com/audit-ai/cro-backend/internal/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.Database.DSN != "" {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
	} else {
		log.Println("DB_DSN not set, audit history and prompt cache disabled")
	}

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "cro-backend",
		Version:        cfg.App.Version,
		EngineURL:      cfg.Engine.BaseURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SessionTTL:     cfg.Redis.SessionTTL,
		DB:             pool,
		Redis:          rdb,
	})

	if pool != nil {
		sched := cronjob.NewScheduler(auditrepo.NewRecordRepository(pool), cfg.App.RetentionDays)
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
