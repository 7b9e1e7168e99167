package main

import (
	"context"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/anotador/internal/config"
	"github.com/jason-s-yu/anotador/internal/httpapi"
	"github.com/jason-s-yu/anotador/internal/journal"
	"github.com/jason-s-yu/anotador/internal/session"
	"github.com/jason-s-yu/anotador/internal/store"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		logger.Info("using postgres store")
	} else {
		st, err = store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatalf("sqlite: %v", err)
		}
		logger.Infof("using sqlite store at %s", cfg.SQLitePath)
	}
	defer st.Close()

	var jnl *journal.Journal
	if cfg.RedisAddr != "" {
		jnl, err = journal.Connect(cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer jnl.Close()
		logger.Infof("mutation journal enabled at %s", cfg.RedisAddr)
	}

	feed := httpapi.NewFeed(logger)
	ctrl := session.New(st, logger,
		session.WithJournal(jnl),
		session.WithNotifier(feed.Broadcast),
	)
	srv := httpapi.New(ctrl, st, logger, feed)

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
