package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-bank/atlas_bank/internal/auth"
	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/middleware"
	"github.com/atlas-bank/atlas_bank/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Outside development both backing stores are mandatory.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Ledger store: Postgres in production, in-memory in dev without a DB.
	var store ledger.Store
	var userRepo identity.Repository
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		store = ledger.NewMemoryStore()
		userRepo = identity.NewMemoryRepository()
	}

	ledgerSvc := ledger.NewService(store)
	userSvc := identity.NewService(userRepo)
	tokenSvc := auth.NewService(d.Cfg)
	notifier := notification.NewLoggerNotifier(d.Logger)

	authHandler := auth.NewHandler(userSvc, tokenSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc, notifier)

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterUserRoutes(api, userSvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(tokenSvc, userRepo))
	if d.Cache != nil {
		// Money-moving endpoints absorb client retries via Idempotency-Key.
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterSessionRoutes(protected, authHandler)
	RegisterAccountRoutes(protected, ledgerHandler)
	RegisterTransactionRoutes(protected, ledgerHandler)

	return nil
}
