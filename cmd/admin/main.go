package main

import (
	"context"
	"errors"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/internal/repository"
	"github.com/noah-isme/instituto-admin-api/pkg/config"
	"github.com/noah-isme/instituto-admin-api/pkg/database"
	"github.com/noah-isme/instituto-admin-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	cli := &commandLine{out: os.Stdout, logger: logr}

	// hash needs no database.
	if len(os.Args) < 2 || os.Args[1] != "hash" {
		db, err := database.NewPostgres(context.Background(), cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close()
		cli.users = repository.NewUserRepository(db)
	}

	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logr.Error("admin command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
