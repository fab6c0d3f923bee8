package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/handler/http/middleware"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/jwt"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/metrics"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	TapLimiter     *middleware.RateLimiter
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler, employeeHandler EmployeeHandler, reportHandler ReportHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(metrics.InstrumentHandler)

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with its own short-lived query token
		r.Get("/attendance/stream", attendanceHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceTap), rateLimit(cfg.TapLimiter)).
					Post("/tap", attendanceHandler.Tap)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/events", attendanceHandler.ListEvents)
					r.Get("/employees/{id}/state", attendanceHandler.GetState)
					r.Get("/stream/token", attendanceHandler.GetStreamToken)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceOverride))
					r.Post("/employees/{id}/break", attendanceHandler.PutOnBreak)
					r.Post("/employees/{id}/break/end", attendanceHandler.EndBreak)
					r.Post("/employees/{id}/clock-out", attendanceHandler.ClockOutEmployee)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", employeeHandler.List)
					r.Post("/", employeeHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", employeeHandler.Get)
						r.Patch("/status", employeeHandler.UpdateStatus)
						r.Get("/cards", employeeHandler.ListCards)
						r.Post("/cards", employeeHandler.IssueCard)
					})
				})

				r.Delete("/cards/{id}", employeeHandler.DeactivateCard)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/timesheets", reportHandler.ListTimesheets)
				r.Get("/timesheets/summary", reportHandler.Summary)
				r.Get("/timesheets/export", reportHandler.Export)
				r.Get("/today", reportHandler.Today)
			})
		})
	})

	return r
}

func rateLimit(limiter *middleware.RateLimiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return limiter.Handler
}
