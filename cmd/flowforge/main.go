package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Atri9Ghosh/FlowForge/internal/api"
	"github.com/Atri9Ghosh/FlowForge/internal/config"
	"github.com/Atri9Ghosh/FlowForge/internal/db"
	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/integration"
	"github.com/Atri9Ghosh/FlowForge/internal/queue"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
	"github.com/Atri9Ghosh/FlowForge/internal/services"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("flowforge v0.1.0")
	fmt.Println("Usage: flowforge serve")
}

func serve() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	if cfg.Auth.Secret == "" {
		slog.Error("auth secret is required (config auth.secret or AUTH_SECRET)")
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		workflowRepo repository.WorkflowRepository
		runRepo      repository.RunRepository
		jobRepo      repository.JobRepository
		userRepo     repository.UserRepository
	)
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database error", "err", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			slog.Error("migration error", "err", err)
			os.Exit(1)
		}

		persistentJobs := repository.NewPersistentJobRepository(database)
		if n, err := persistentJobs.ResetStale(ctx); err != nil {
			slog.Warn("resetting stale jobs failed", "err", err)
		} else if n > 0 {
			slog.Info("requeued stale active jobs", "count", n)
		}

		workflowRepo = repository.NewPersistentWorkflowRepository(database)
		runRepo = repository.NewPersistentRunRepository(database)
		jobRepo = persistentJobs
		userRepo = repository.NewPersistentUserRepository(database)
		slog.Info("using postgres storage")
	} else {
		workflowRepo = repository.NewMemoryWorkflowRepository()
		runRepo = repository.NewMemoryRunRepository()
		jobRepo = repository.NewMemoryJobRepository()
		userRepo = repository.NewMemoryUserRepository()
		slog.Warn("no database configured, using in-memory storage")
	}

	registry := integration.Default()
	processor := services.NewProcessor(workflowRepo, registry)
	runHistorySvc := services.NewRunHistoryService(runRepo)
	worker := services.NewWorker(processor, runHistorySvc)

	q := queue.New(jobRepo, worker.HandleJob, queue.Options{
		Concurrency: cfg.Queue.Concurrency,
		Retry: flowforge.RetryPolicy{
			MaxAttempts:   cfg.Queue.MaxAttempts,
			InitialDelay:  cfg.Queue.InitialDelay,
			BackoffFactor: 2.0,
		},
	})
	q.Start()

	workflowSvc := services.NewWorkflowService(workflowRepo)
	scheduler := services.NewSchedulerService(workflowRepo, q)
	workflowSvc.SetScheduleSync(scheduler)
	if err := scheduler.Start(ctx); err != nil {
		slog.Error("scheduler error", "err", err)
		os.Exit(1)
	}

	srv := api.NewServer(workflowSvc, runHistorySvc, q, userRepo, registry, []byte(cfg.Auth.Secret))
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		slog.Info("starting flowforge server", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", "err", err)
	}
	scheduler.Stop()
	q.Stop()
}
