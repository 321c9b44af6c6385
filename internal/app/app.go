package app

import (
	"homeward-backend/internal/auth"
	"homeward-backend/internal/config"
	"homeward-backend/internal/database"
	"homeward-backend/internal/health"
	"homeward-backend/internal/middleware"
	"homeward-backend/internal/plans"
	"homeward-backend/internal/progress"
	"homeward-backend/internal/projection"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// gormPinger adapts *gorm.DB to the health DBPinger interface.
type gormPinger struct{ db *gorm.DB }

func (g *gormPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis client are used by main for
// startup pings.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the client is shared with the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// --- Database ---
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// --- Health (no auth) ---
	var pinger health.DBPinger
	if db != nil {
		pinger = &gormPinger{db: db}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             pinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", healthHandlers.Reset)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)

	// --- Auth (no auth middleware) ---
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		DB:         db,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil {
		engine := projection.NewEngine()
		if cfg.PlanMaxLoanToValue > 0 {
			engine.MaxLoanToValue = cfg.PlanMaxLoanToValue
		}

		planService := &plans.Service{DB: db, Engine: engine}
		planHandlers := &plans.Handlers{Service: planService}
		planGroup := app.Group("/api/v1/plans", middleware.RequireAuth())
		planGroup.Post("/create-plan", planHandlers.CreatePlan)
		planGroup.Patch("/update-section", planHandlers.UpdateSection)
		planGroup.Get("/view-plan", planHandlers.ViewPlan)
		planGroup.Get("/view-projection", planHandlers.ViewProjection)

		progressService := &progress.Service{DB: db}
		progressHandlers := &progress.Handlers{Service: progressService}
		progressGroup := app.Group("/api/v1/progress", middleware.RequireAuth())
		progressGroup.Get("/view-progress", progressHandlers.ViewProgress)
		progressGroup.Delete("/reset-progress", progressHandlers.ResetProgress)
	}

	return app, db, rdb, nil
}
