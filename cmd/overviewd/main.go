package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/logging"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/overview"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/server"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/sqliteutil"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func main() {
	var (
		dbPath = flag.String("db", "emporium.db", "path to the sqlite database file")
		addr   = flag.String("addr", ":8080", "HTTP listen address")
	)
	flag.Parse()

	ctx := context.Background()
	logger := logging.New()

	db, err := sqliteutil.Open(*dbPath)
	if err != nil {
		logger.Error("open db failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.NewStore(db)
	if err := st.Init(ctx); err != nil {
		logger.Error("init schema failed", "error", err)
		os.Exit(1)
	}

	engine := overview.NewService(st, logger.With("component", "overview"))
	serverLogger := logger.With("component", "http")
	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.NewServer(st, engine, serverLogger).Router(),
	}

	go func() {
		serverLogger.Info("overview API listening", "addr", *addr, "db", *dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverLogger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(serverLogger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return
	}
	logger.Info("overview server stopped")
}
