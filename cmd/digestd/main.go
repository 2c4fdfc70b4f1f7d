package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"go.temporal.io/sdk/client"
	temporalworker "go.temporal.io/sdk/worker"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/digest"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/logging"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/overview"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/sqliteutil"
	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func main() {
	var (
		dbPath       = flag.String("db", "emporium.db", "path to the sqlite database file")
		temporalAddr = flag.String("temporal", client.DefaultHostPort, "temporal server host:port")
		runOnce      = flag.Bool("run-once", false, "dispatch a single digest, print the result, and exit")
		reason       = flag.String("reason", "manual", "reason recorded on the digest run")
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

	c, err := client.Dial(client.Options{HostPort: *temporalAddr})
	if err != nil {
		logger.Error("temporal dial failed", "error", err, "host", *temporalAddr)
		os.Exit(1)
	}
	defer c.Close()

	engine := overview.NewService(st, logger.With("component", "overview"))
	activities := digest.NewActivities(st, engine, logger.With("component", "digest.activities"))
	w := digest.RegisterDigestWorker(c, activities)

	if *runOnce {
		go func() {
			if err := w.Run(temporalworker.InterruptCh()); err != nil {
				logger.Error("digest worker stopped", "error", err)
			}
		}()
		orchestrator := digest.NewOrchestrator(c, logger)
		result, err := orchestrator.RunDigest(ctx, digest.DigestInput{Reason: *reason})
		if err != nil {
			logger.Error("digest run failed", "error", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	logger.Info("digest worker starting", "task_queue", digest.TaskQueue(), "db", *dbPath)
	if err := w.Run(temporalworker.InterruptCh()); err != nil {
		logger.Error("digest worker stopped", "error", err)
		os.Exit(1)
	}
}
