package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodshare/internal/config"
	"foodshare/internal/database"
	"foodshare/internal/groups"
	"foodshare/internal/handlers"
	"foodshare/internal/logging"
	"foodshare/internal/metrics"
	"foodshare/internal/services"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.Sentry.DSN,
		Environment: cfg.Env,
		Release:     cfg.Revision,
	})
	if err != nil {
		return err
	}
	defer logging.Flush(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", zap.Error(err))
		return err
	}

	emitter := metrics.New(logger)
	groupStore := database.NewGroupStore(db)
	membershipStore := database.NewMembershipStore(db)

	engine := groups.NewEngine(groups.Deps{
		Memberships: membershipStore,
		Groups:      groupStore,
		Reports:     database.NewReportStore(db),
		Notifier:    services.NewEmailService(cfg.Email),
		Metrics:     emitter,
		Logger:      logger.Named("groups"),
	}, engineSettings(cfg.Groups))

	scheduler := services.NewScheduler(emitter, logger.Named("scheduler"))
	for _, task := range engine.Tasks() {
		if err := scheduler.Add(task.Name, task.Schedule, task.Run); err != nil {
			return err
		}
	}

	h := handlers.New(cfg, groupStore, membershipStore, database.NewUserStore(db), scheduler, logger.Named("http"))
	router, err := h.NewRouter(emitter.Handler())
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", zap.String("addr", server.Addr), zap.String("revision", cfg.Revision))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Groups.SchedulerEnabled {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	} else {
		logger.Info("Scheduler disabled, jobs only run on demand")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func engineSettings(cfg config.Groups) groups.Settings {
	return groups.Settings{
		Thresholds: groups.Thresholds{
			Inactive:       groups.Threshold{Days: cfg.DaysUntilInactive},
			RemovalWarning: groups.Threshold{Months: cfg.InactiveMonthsUntilRemovalNotice},
			Removal:        groups.Threshold{Days: cfg.DaysAfterNoticeUntilRemoval},
		},
		GroupInactiveAfter: groups.Threshold{Days: cfg.DaysUntilGroupInactive},
		SummarySlot:        groups.SummarySlot{Weekday: cfg.SummaryWeekday, Hour: cfg.SummaryHour},
	}
}
