package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/directory"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/reports"
	"hrms/internal/platform/config"
	"hrms/internal/platform/crypto"
	"hrms/internal/platform/db"
	"hrms/internal/platform/email"
	"hrms/internal/platform/metrics"
	"hrms/internal/transport/http/api"
	attendancehandler "hrms/internal/transport/http/handlers/attendance"
	authhandler "hrms/internal/transport/http/handlers/auth"
	companyhandler "hrms/internal/transport/http/handlers/company"
	directoryhandler "hrms/internal/transport/http/handlers/directory"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	notificationshandler "hrms/internal/transport/http/handlers/notifications"
	reportshandler "hrms/internal/transport/http/handlers/reports"
	"hrms/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires stores, services and handlers into a ready-to-serve App.
func New(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*App, error) {
	cryptoSvc, err := crypto.New(cfg.MFAEncryptionKey)
	if err != nil {
		return nil, err
	}

	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore, cryptoSvc, cfg.JWTSecret, cfg.SessionTTL, cfg.PasswordResetTTL)

	companySvc := company.NewService(company.NewStore(pool))
	directorySvc := directory.NewService(directory.NewStore(pool))
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), directorySvc, companySvc)

	mailer := email.New(cfg)
	notifySvc := notifications.NewService(notifications.NewStore(pool), mailer, cfg.EmailFrom,
		func(ctx context.Context, userID string) (string, error) {
			user, err := authStore.UserByID(ctx, userID)
			if err != nil {
				return "", err
			}
			return user.Email, nil
		})

	directorySvc.Notifier = notifySvc

	leaveSvc := leave.NewService(leave.NewStore(pool), directorySvc, notifySvc)
	reportsSvc := reports.NewService(reports.NewStore(pool))

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin)).
		Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})

	authHandler := authhandler.NewHandler(authSvc, companySvc, mailer, cfg.EmailFrom, cfg.AllowSelfSignup)
	companyHandler := companyhandler.NewHandler(companySvc)
	directoryHandler := directoryhandler.NewHandler(directorySvc)
	attendanceHandler := attendancehandler.NewHandler(attendanceSvc, directorySvc)
	leaveHandler := leavehandler.NewHandler(leaveSvc, directorySvc)
	notificationsHandler := notificationshandler.NewHandler(notifySvc)
	reportsHandler := reportshandler.NewHandler(reportsSvc, companySvc)

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)

		// Authenticated but outside the onboarding gate, so a fresh
		// admin can finish company setup.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			authHandler.RegisterRoutes(r)
			companyHandler.RegisterRoutes(r)
		})

		// The main application: locked until the company has a plan.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireOnboarded(companySvc))
			directoryHandler.RegisterRoutes(r)
			attendanceHandler.RegisterRoutes(r)
			leaveHandler.RegisterRoutes(r)
			notificationsHandler.RegisterRoutes(r)
			reportsHandler.RegisterRoutes(r)
		})
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

// Run loads config, prepares the database and serves until the listener
// fails.
func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app, err := New(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	log.Printf("hrms server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
