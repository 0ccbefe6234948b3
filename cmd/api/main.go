package main

import (
	"context"
	"log"

	"github.com/oksam-app/eco-todo-backend/config"
	"github.com/oksam-app/eco-todo-backend/internal/auth"
	"github.com/oksam-app/eco-todo-backend/internal/bootstrap"
	"github.com/oksam-app/eco-todo-backend/internal/classify/gemini"
	pointsrepo "github.com/oksam-app/eco-todo-backend/internal/points/repository"
	"github.com/oksam-app/eco-todo-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	sqlDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer sqlDB.Close()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("postgres pool: %v", err)
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	if authClient == nil {
		log.Println("Warning: FIREBASE_CREDENTIALS_PATH not set, running with header-based dev identity")
	}

	model := gemini.New(&cfg.Gemini)
	if !model.Enabled() {
		log.Println("Warning: GEMINI_API_KEY not set, video analysis gateway is disabled")
	}

	local, err := pointsrepo.NewLocalStore(cfg.Fallback.Dir)
	if err != nil {
		log.Fatalf("fallback store: %v", err)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config:     cfg,
		SQLDB:      sqlDB,
		Pool:       pool,
		Redis:      rdb,
		AuthClient: authClient,
		Model:      model,
		Local:      local,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
