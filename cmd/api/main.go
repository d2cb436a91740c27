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

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/alert"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/attendance-backend-go/internal/service/correction"
	"github.com/go-chi/httplog/v3"
)

const appName = "attendance-cmlabs"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Server error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, appName, cfg.Telemetry.TraceExporter)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	var (
		attendanceRepo attendance.AttendanceRepository
		correctionRepo correction.CorrectionRepository
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		attendanceRepo = postgresql.NewAttendanceRepository(db, cfg.Concurrency.LockTimeout)
		correctionRepo = postgresql.NewCorrectionRepository(db, cfg.Concurrency.LockTimeout)
	default:
		locker := keylock.New(cfg.Concurrency.LockTimeout)
		attendanceRepo = memory.NewAttendanceRepository(locker)
		correctionRepo = memory.NewCorrectionRepository(locker)
		logger.Warn("Using in-memory storage, records are lost on restart")
	}

	alerter, err := newAlerter(ctx, cfg.Alert, logger)
	if err != nil {
		return err
	}

	policy := attendance.Policy{
		MinShift:     cfg.Policy.MinShift,
		MaxShift:     cfg.Policy.MaxShift,
		MaxOpenShift: cfg.Policy.MaxOpenShift,
		Location:     cfg.App.Timezone,
		Geo:          geo.AllowAll{},
	}
	if len(cfg.Geo.Sites) > 0 {
		policy.Geo = geo.RadiusValidator{Sites: cfg.Geo.Sites}
	}

	clk := clock.Real{}
	retrier := retry.New(cfg.Concurrency.RetryMax)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policy, clk, retrier, logger)
	correctionSvc := correctionService.NewCorrectionService(
		correctionRepo,
		attendanceSvc,
		alerter,
		clk,
		retrier,
		cfg.Policy.CorrectionWindow,
		logger,
	)

	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(attendanceSvc, correctionSvc, logger).RegisterJobs(scheduler, cfg.Sweeper.Interval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewCorrectionHandler(correctionSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newAlerter(ctx context.Context, cfg config.AlertConfig, logger *slog.Logger) (alert.Alerter, error) {
	if cfg.SQSQueueURL == "" {
		return alert.NewLogAlerter(logger), nil
	}
	client, err := alert.NewSQSClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("creating alert queue client: %w", err)
	}
	return alert.NewSQSAlerter(client, cfg.SQSQueueURL, logger), nil
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
