// Package handler serves the appointment REST API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dentixpro/internal/middleware"
	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

// Repository is implemented by *store.Store and *memstore.DB.
type Repository interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserName(ctx context.Context, id, name string) error
	UpdateUser(ctx context.Context, u *model.User) error
	SetPassword(ctx context.Context, id, hash string) error
	ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	SlotTaken(ctx context.Context, date, hhmm string) (bool, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, int, error)
	SetAppointmentStatus(ctx context.Context, id string, from, to model.Status) error
	UpdateAppointment(ctx context.Context, a *model.Appointment, from model.Status) error
}

type Handler struct {
	repo    Repository
	secret  string
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
	limiter *middleware.RateLimiter
}

type Option func(*Handler)

func WithLogger(l *zap.Logger) Option { return func(h *Handler) { h.log = l } }

// WithClock overrides the clock used to reject bookings in the past.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// WithRateLimit throttles the login and signup routes.
func WithRateLimit(rl *middleware.RateLimiter) Option {
	return func(h *Handler) { h.limiter = rl }
}

func New(repo Repository, secret string, ttl time.Duration, opts ...Option) *Handler {
	h := &Handler{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes returns the API router, meant to be mounted under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(middleware.RateLimit(h.limiter))
		}
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.secret))

		r.Get("/users/me", h.Me)
		r.Put("/users/me", h.UpdateMe)
		r.Put("/users/me/password", h.ChangePassword)
		r.Get("/users/me/dates", h.MyDates)

		r.Post("/dates", h.CreateDate)
		r.Delete("/dates/{id}", h.CancelDate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(h.repo, model.RoleAdmin, h.log))
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
			r.Put("/users/{id}", h.UpdateUser)
			r.Put("/users/{id}/reset-password", h.ResetPassword)
			r.Get("/admin/dates", h.AllDates)
			r.Put("/admin/dates/{id}", h.UpdateDate)
			r.Put("/admin/dates/{id}/complete", h.CompleteDate)
			r.Put("/admin/dates/{id}/cancel", h.AdminCancelDate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMsg(w, http.StatusNotFound, "Recurso no encontrado")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMsg(w, http.StatusMethodNotAllowed, "Método no permitido")
	})
	return r
}
