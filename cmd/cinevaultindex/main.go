package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/JustinTDCT/cinevaultindex/internal/config"
	"github.com/JustinTDCT/cinevaultindex/internal/control"
	"github.com/JustinTDCT/cinevaultindex/internal/enrich"
	"github.com/JustinTDCT/cinevaultindex/internal/jobs"
	"github.com/JustinTDCT/cinevaultindex/internal/notifications"
	"github.com/JustinTDCT/cinevaultindex/internal/store"
)

const bannerArt = `
   _____ _            __      __          _ _   _           _
  / ____(_)           \ \    / /         | | | |           | |
 | |     _ _ __   ___  \ \  / /_ _ _   _| | |_| |_ __   __| | _____  __
 | |    | | '_ \ / _ \  \ \/ / _' | | | | | __| | '_ \ / _' |/ _ \ \/ /
 | |____| | | | |  __/   \  / (_| | |_| | | |_| | | | | (_| |  __/>  <
  \_____|_|_| |_|\___|    \/ \__,_|\__,_|_|\__|_|_| |_|\__,_|\___/_/\_\
`

func main() {
	fmt.Println(bannerArt)
	fmt.Println("  Media Library Indexer")

	cfg := config.Load()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("store opened", "path", cfg.DatabasePath)

	cfg.MergeFromDB(ctx, db.DB())

	var provider enrich.Provider
	if cfg.RemoteAPIBaseURL != "" {
		provider = enrich.NewHTTPProvider(cfg.RemoteAPIBaseURL, cfg.RemoteAPIKey)
	} else {
		slog.Warn("no remote API configured, enrichment will be skipped")
	}

	controller := control.New(db, provider, cfg.RunCleanupPass, cfg.ScanConcurrency, cfg.EnricherConcurrency)

	hub := notifications.NewHub()
	http.Handle("/ws", hub)

	queue := jobs.NewQueue(cfg.RedisAddr)
	queue.RegisterHandler(jobs.TaskSyncLibrary, jobs.NewSyncHandler(controller, hub))

	go func() {
		if err := queue.Start(ctx); err != nil {
			slog.Error("job queue worker stopped", "error", err)
		}
	}()
	defer queue.Stop()

	scheduler := jobs.NewScheduler(queue)
	if err := scheduler.Start(cfg.ScheduleCron, db); err != nil {
		slog.Error("scheduler failed to start", "error", err)
	}
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	slog.Info("websocket progress feed listening", "addr", "ws://localhost"+addr+"/ws")
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
