package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/hibiken/asynq"

	adapterlogger "backoffice-api/internal/adapters/logger"
	"backoffice-api/internal/app"
	"backoffice-api/internal/config"
	"backoffice-api/internal/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New("error").Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(cfg.LogLevel)
	xray.Configure(xray.Config{LogLevel: "error"})

	core, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	snapshotTask, err := jobs.NewSnapshotTask(time.Time{})
	if err != nil {
		logger.Error(ctx, "build snapshot task", "error", err)
		os.Exit(1)
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPayrollSnapshot, Handler: jobs.NewSnapshotJob(core.Snapshots, logger).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SnapshotCron, Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error(ctx, "init worker", "error", err)
		os.Exit(1)
	}

	logger.Info(ctx, "worker started", "redis", cfg.RedisAddr, "snapshot_cron", cfg.SnapshotCron)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "worker run", "error", err)
		os.Exit(1)
	}
}
