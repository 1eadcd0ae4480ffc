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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ticketBooker/internal/config"
	"ticketBooker/internal/http-server/handlers/event/createEvent"
	"ticketBooker/internal/http-server/handlers/event/deleteEvent"
	"ticketBooker/internal/http-server/handlers/event/getAllEvents"
	"ticketBooker/internal/http-server/handlers/event/getEventInfo"
	"ticketBooker/internal/http-server/handlers/event/getEventReservations"
	"ticketBooker/internal/http-server/handlers/event/updateEvent"
	"ticketBooker/internal/http-server/handlers/reservation/cancelReservation"
	"ticketBooker/internal/http-server/handlers/reservation/myReservations"
	"ticketBooker/internal/http-server/handlers/reservation/reserveTicket"
	"ticketBooker/internal/http-server/handlers/user/deleteUser"
	"ticketBooker/internal/http-server/handlers/user/getAllUsers"
	"ticketBooker/internal/http-server/handlers/user/login"
	"ticketBooker/internal/http-server/handlers/user/register"
	"ticketBooker/internal/http-server/middleware/mwauth"
	"ticketBooker/internal/http-server/middleware/mwlogger"
	"ticketBooker/internal/http-server/middleware/mwratelimit"
	"ticketBooker/internal/jobs/audit"
	"ticketBooker/internal/lib/api/response"
	"ticketBooker/internal/lib/auth"
	"ticketBooker/internal/lib/lock"
	"ticketBooker/internal/lib/logger/handlers/slogpretty"
	"ticketBooker/internal/lib/logger/sl"
	"ticketBooker/internal/models"
	"ticketBooker/internal/reservation"
	"ticketBooker/internal/storage/memory"
	"ticketBooker/internal/storage/postgres"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// inventory is everything the HTTP layer and the engine need from a store.
type inventory interface {
	reservation.Store
	audit.Auditor

	CreateEvent(ctx context.Context, name string, capacity int) (int64, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id int64, name *string, capacity *int) (models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListEventReservations(ctx context.Context, eventID int64) ([]models.EventReservation, error)
	ListUserReservations(ctx context.Context, userID int64) ([]models.UserReservation, error)
	CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting ticket booker", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	store, err := setupStorage(cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, closeLocker, err := setupLocker(cfg)
	if err != nil {
		log.Error("failed to init reservation lock", sl.Err(err))
		os.Exit(1)
	}

	engine := reservation.New(log, store, locker, reservation.WithTimeout(cfg.Reservation.OpTimeout))
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var reserveLimit *mwratelimit.Limiter
	if cfg.RateLimit.Enabled {
		reserveLimit = mwratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go reserveLimit.Run(ctx)
	}

	router := newRouter(log, store, engine, tokens, reserveLimit, cfg.Auth.AdminSignup)

	if cfg.Audit.Enabled {
		sched, err := audit.New(log, store, cfg.Storage.QueryTimeout).Schedule(cfg.Audit.Interval)
		if err != nil {
			log.Error("failed to schedule inventory audit", sl.Err(err))
			os.Exit(1)
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Error("failed to stop scheduler", sl.Err(err))
			}
		}()
	}

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("application stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = closeLocker(); err != nil {
		log.Error("failed to close redis connection", sl.Err(err))
	}

	if err = store.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage closed")
}

// newRouter wires the HTTP routes. A nil limiter disables reserve throttling.
func newRouter(
	log *slog.Logger,
	store inventory,
	engine *reservation.Engine,
	tokens *auth.Tokens,
	limiter *mwratelimit.Limiter,
	adminSignup bool,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/register", register.New(log, store, adminSignup))
	router.Post("/login", login.New(log, store, tokens))
	router.Get("/events", getAllEvents.New(log, store))
	router.Get("/events/{id}", getEventInfo.New(log, store))

	router.Group(func(r chi.Router) {
		r.Use(mwauth.New(log, tokens))

		reserve := reserveTicket.New(log, engine)
		if limiter != nil {
			r.With(limiter.Middleware(log)).Post("/events/{id}/reserve", reserve)
		} else {
			r.Post("/events/{id}/reserve", reserve)
		}
		r.Delete("/events/{id}/cancel", cancelReservation.New(log, engine))
		r.Get("/my_reservations", myReservations.New(log, store))

		r.Group(func(r chi.Router) {
			r.Use(mwauth.RequireAdmin)

			r.Post("/events", createEvent.New(log, store))
			r.Put("/events/{id}", updateEvent.New(log, store))
			r.Delete("/events/{id}", deleteEvent.New(log, store))
			r.Get("/events/{id}/reservations", getEventReservations.New(log, store))
			r.Get("/users", getAllUsers.New(log, store))
			r.Delete("/users/{id}", deleteUser.New(log, store))
		})
	})

	return router
}

func setupStorage(cfg *config.Config) (inventory, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		s, err := postgres.InitDB(&cfg.Database, cfg.Storage.QueryTimeout)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err = s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func setupLocker(cfg *config.Config) (lock.Locker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Reservation.Lock {
	case "local":
		return lock.NewLocal(), noop, nil
	case "none":
		return lock.None{}, noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}

		return lock.NewRedis(client, cfg.Redis.LockTTL, cfg.Redis.RetryInterval), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown reservation lock %q", cfg.Reservation.Lock)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
