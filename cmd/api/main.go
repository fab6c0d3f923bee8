package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/mrjaketay/timeApp-sub000/internal/config"
	appHTTP "github.com/mrjaketay/timeApp-sub000/internal/handler/http"
	"github.com/mrjaketay/timeApp-sub000/internal/handler/http/middleware"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/cron"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/database"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/jwt"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/sse"
	"github.com/mrjaketay/timeApp-sub000/internal/repository/postgresql"
	attendanceService "github.com/mrjaketay/timeApp-sub000/internal/service/attendance"
	employeeService "github.com/mrjaketay/timeApp-sub000/internal/service/employee"
	reportService "github.com/mrjaketay/timeApp-sub000/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeapp"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(dsn); err != nil {
			log.Fatal("Error running migrations: ", err)
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn,
		database.WithTimeZone(cfg.App.Timezone),
		database.WithPoolSize(cfg.Database.MinConns, cfg.Database.MaxConns),
	)
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	eventRepo := postgresql.NewAttendanceEventRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	cardRepo := postgresql.NewCardRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	transitionLocker := postgresql.NewTransitionLocker(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	resolver := attendanceService.NewEmployeeResolver(employeeRepo, cardRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		transitionLocker,
		eventRepo,
		timesheetRepo,
		resolver,
		cfg.App.Location,
		attendanceService.WithPublisher(attendanceService.NewSSEPublisher(hub)),
	)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, cardRepo)
	reportSvc := reportService.NewReportService(reportRepo, cfg.App.Location)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	tapLimiter := middleware.NewRateLimiter(cfg.Attendance.TapRatePerSecond, cfg.Attendance.TapRateBurst)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			TapLimiter:     tapLimiter,
		},
		JWTService,
		attendanceHandler,
		employeeHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(eventRepo, cfg.Attendance.StaleSessionAfter).RegisterJobs(scheduler)
	scheduler.AddJob("tap_limiter_cleanup", 10*time.Minute, func(ctx context.Context) error {
		if removed := tapLimiter.Cleanup(30 * time.Minute); removed > 0 {
			slog.Debug("Cron: Tap limiters evicted", "count", removed)
		}
		return nil
	})
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
