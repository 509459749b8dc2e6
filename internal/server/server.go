package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/config"
	"github.com/rgalloway/tally/internal/email"
	"github.com/rgalloway/tally/internal/handler"
	"github.com/rgalloway/tally/internal/middleware"
	"github.com/rgalloway/tally/internal/push"
	"github.com/rgalloway/tally/internal/reminder"
	"github.com/rgalloway/tally/internal/store"
)

type Server struct {
	db           *sql.DB
	publicH      *handler.PublicHandler
	authH        *handler.AuthHandler
	habitH       *handler.HabitHandler
	statsH       *handler.StatsHandler
	profileH     *handler.ProfileHandler
	achievementH *handler.AchievementHandler
	pushH        *handler.PushHandler
	reminderH    *handler.ReminderHandler
	accountH     *handler.AccountHandler
	sessionStore *store.SessionStore
	tokens       *auth.Tokens
	rateLimiter  *middleware.RateLimiter
	runner       *reminder.Runner
	logger       *slog.Logger
}

func New(db *sql.DB, cfg config.Config, emailClient *email.Client, pushSvc *push.Service, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)
	habitStore := store.NewHabitStore(db)
	completionStore := store.NewCompletionStore(db)
	achievementStore := store.NewAchievementStore(db)
	emailLogStore := store.NewEmailLogStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	checker := reminder.NewAchievementChecker(habitStore, completionStore, achievementStore)

	evaluator := reminder.NewEvaluator(
		completionStore, emailLogStore, emailClient, pushSvc, pushStore,
		cfg.BaseURL, logger,
	)
	runner := reminder.NewRunner(profileStore, evaluator, logger)

	return &Server{
		db:           db,
		publicH:      handler.NewPublicHandler(db, userStore, habitStore, completionStore, emailLogStore, emailClient, pushSvc, logger.With("component", "public")),
		authH:        handler.NewAuthHandler(userStore, profileStore, sessionStore, tokens, logger.With("component", "auth")),
		habitH:       handler.NewHabitHandler(habitStore, completionStore, checker, logger.With("component", "habit")),
		statsH:       handler.NewStatsHandler(habitStore, completionStore, logger.With("component", "stats")),
		profileH:     handler.NewProfileHandler(profileStore, logger.With("component", "profile")),
		achievementH: handler.NewAchievementHandler(achievementStore, logger.With("component", "achievement")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		reminderH:    handler.NewReminderHandler(userStore, profileStore, completionStore, emailLogStore, emailClient, runner, cfg.CronSecret, logger.With("component", "reminder")),
		accountH:     handler.NewAccountHandler(userStore, profileStore, habitStore, completionStore, achievementStore, emailLogStore, logger.With("component", "account")),
		sessionStore: sessionStore,
		tokens:       tokens,
		rateLimiter:  middleware.NewRateLimiter(),
		runner:       runner,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Runner returns the reminder batch runner for the in-process scheduler.
func (s *Server) Runner() *reminder.Runner {
	return s.runner
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.publicH.Health)
	outerMux.HandleFunc("GET /api/stats", s.publicH.Stats)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))

	// Cron route carries its own guard instead of a user session.
	outerMux.HandleFunc("POST /api/cron/send-reminders", s.reminderH.Cron)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Habit API routes
	mux.HandleFunc("GET /api/habits", s.habitH.List)
	mux.HandleFunc("POST /api/habits", s.habitH.Create)
	mux.HandleFunc("PUT /api/habits/sort", s.habitH.UpdateSortOrder)
	mux.HandleFunc("GET /api/habits/{id}", s.habitH.Get)
	mux.HandleFunc("PUT /api/habits/{id}", s.habitH.Update)
	mux.HandleFunc("DELETE /api/habits/{id}", s.habitH.Delete)
	mux.HandleFunc("POST /api/habits/{id}/toggle", s.habitH.Toggle)
	mux.HandleFunc("GET /api/completions", s.habitH.ListCompletions)

	// Stats API routes
	mux.HandleFunc("GET /api/stats/today", s.statsH.Today)
	mux.HandleFunc("GET /api/stats/week", s.statsH.Week)
	mux.HandleFunc("GET /api/stats/month", s.statsH.Month)
	mux.HandleFunc("GET /api/stats/heatmap", s.statsH.Heatmap)
	mux.HandleFunc("GET /api/stats/top", s.statsH.Top)
	mux.HandleFunc("GET /api/stats/comparison", s.statsH.Comparison)
	mux.HandleFunc("GET /api/stats/correlation", s.statsH.Correlation)

	// Profile and achievements
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("GET /api/achievements", s.achievementH.List)

	// Push notification API routes
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	// Reminder API routes
	mux.HandleFunc("POST /api/reminders/check", s.reminderH.Check)
	mux.HandleFunc("POST /api/reminders/test", s.reminderH.TestEmail)

	// Account API routes
	mux.HandleFunc("POST /api/account/export", s.accountH.Export)
	mux.HandleFunc("DELETE /api/account", s.accountH.Delete)
}
