package httpserver

import (
	"net/http"
	"time"

	"club-app-go/internal/config"
	"club-app-go/internal/domain/identity"
	"club-app-go/internal/transport/httpserver/handler"
	authmw "club-app-go/internal/transport/httpserver/middleware"
	"club-app-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, tokens authmw.TokenParser, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(authmw.LogFields)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	auth := authmw.NewJWTAuth(tokens, log)
	loginLimiter := authmw.NewRateLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginRateBurst)

	adminOnly := authmw.RequireAnyRole(identity.RoleAdmin)
	management := authmw.RequireAnyRole(identity.ManagementRoles...)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)

			r.Get("/health", handlers.Common.Health)
			r.With(loginLimiter.Middleware).Post("/auth/login", handlers.Common.Login)
			r.Post("/auth/register", handlers.Common.Register)
			r.Get("/levels", handlers.Billing.ListLevels)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Required)

			r.Get("/auth/me", handlers.Common.Me)

			r.With(adminOnly).Post("/members/{id}/roles", handlers.Common.AssignRole)
			r.With(adminOnly).Delete("/members/{id}/roles/{role}", handlers.Common.RevokeRole)

			r.With(management).Get("/members", handlers.Members.ListMembers)
			r.Post("/members/{id}/enroll", handlers.Members.Enroll)
			r.Post("/members/{id}/deactivate", handlers.Members.Deactivate)
			r.With(management).Post("/members/{id}/admin-activate", handlers.Members.AdminActivate)
			r.Put("/members/me/sport-profile", handlers.Members.UpdateSportProfile)

			r.Get("/members/{id}/dues", handlers.Billing.ListDues)
			r.With(management).Post("/members/{id}/payments", handlers.Billing.RegisterPayments)
			r.Post("/dues/{id}/checkout", handlers.Billing.Checkout)
			r.With(adminOnly).Post("/payments/{id}/refund", handlers.Billing.Refund)
			r.With(adminOnly).Post("/dues/generate", handlers.Billing.GenerateDues)
			r.With(adminOnly).Post("/dues/backfill", handlers.Billing.BackfillDues)

			r.Get("/disciplines", handlers.Members.ListDisciplines)
			r.Get("/categories", handlers.Members.ListCategories)

			r.Get("/categories/{id}/schedules", handlers.Scheduling.ListSchedules)
			r.Get("/categories/{id}/sessions", handlers.Scheduling.ListSessions)
			r.Get("/sessions/{id}/attendance-sheet", handlers.Scheduling.AttendanceSheet)
			r.Get("/events/upcoming", handlers.Scheduling.UpcomingEvents)

			r.Group(func(r chi.Router) {
				r.Use(management)

				r.Post("/categories/{id}/schedules", handlers.Scheduling.CreateSchedule)
				r.Patch("/schedules/{id}", handlers.Scheduling.UpdateSchedule)
				r.Post("/categories/{id}/generate-sessions", handlers.Scheduling.GenerateSessions)
				r.Post("/sessions/{id}/record-attendance", handlers.Scheduling.RecordAttendance)
				r.Post("/events", handlers.Scheduling.CreateEvent)
			})

			r.Post("/access/check", handlers.Access.Check)
			r.With(management).Get("/access/logs", handlers.Access.ListLogs)
		})
	})

	return r
}
