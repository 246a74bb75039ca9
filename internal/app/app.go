package app

import (
	"smartfolio-backend/internal/admin"
	"smartfolio-backend/internal/assets"
	"smartfolio-backend/internal/auth"
	"smartfolio-backend/internal/config"
	"smartfolio-backend/internal/database"
	"smartfolio-backend/internal/emails"
	"smartfolio-backend/internal/health"
	"smartfolio-backend/internal/middleware"
	"smartfolio-backend/internal/portfolio"
	"smartfolio-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{FrontendURL: cfg.FrontendURL}))

	// Session (Redis)
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

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

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

	oracle := pricing.NewAlphaVantage(cfg.AlphaVantageAPIKey)
	mailer := &emails.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}

	// Health
	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	if db == nil {
		// No DB configured (e.g. smoke runs): only health is served.
		return app, nil, rdb, nil
	}

	// Auth (public)
	authService := &auth.Service{DB: db, Rdb: rdb, Mailer: mailer}
	authHandlers := &auth.Handlers{Service: authService, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/verify-otp", authHandlers.VerifyOTP)
	authGroup.Post("/resend-otp", authHandlers.ResendOTP)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)
	authGroup.Post("/forgot-password", authHandlers.ForgotPassword)
	authGroup.Post("/reset-password", authHandlers.ResetPassword)

	// Admin: public login + protected panel
	adminService := &admin.Service{DB: db}
	adminHandlers := &admin.Handlers{
		Service:   adminService,
		AdminID:   cfg.AdminID,
		AdminPass: cfg.AdminPass,
		Config:    sessionCfg,
	}
	app.Post("/api/v1/admin/login", adminHandlers.Login)
	adminGroup := app.Group("/api/v1/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	adminGroup.Get("/pending-users", adminHandlers.PendingUsers)
	adminGroup.Get("/approved-users", adminHandlers.ApprovedUsers)
	adminGroup.Get("/blacklisted-users", adminHandlers.BlacklistedUsers)
	adminGroup.Put("/approve/:id", adminHandlers.Approve)
	adminGroup.Put("/blacklist/:id", adminHandlers.Blacklist)
	adminGroup.Put("/unblacklist/:id", adminHandlers.Unblacklist)

	// Assets: public reads, admin writes
	assetsService := &assets.Service{DB: db}
	assetsHandlers := &assets.Handlers{Service: assetsService, Oracle: oracle}
	assetsGroup := app.Group("/api/v1/assets")
	assetsGroup.Get("/", assetsHandlers.List)
	assetsGroup.Get("/search", assetsHandlers.Search)
	assetsGroup.Get("/price/:symbol", assetsHandlers.Price)
	assetsGroup.Post("/", middleware.RequireAuth(), middleware.RequireAdmin(), assetsHandlers.Create)
	assetsGroup.Delete("/:id", middleware.RequireAuth(), middleware.RequireAdmin(), assetsHandlers.Delete)

	// Portfolio: the transaction engine (auth required)
	portfolioService := &portfolio.Service{
		DB:           db,
		Oracle:       oracle,
		StartingCash: cfg.StartingCashBalance,
	}
	portfolioHandlers := &portfolio.Handlers{Service: portfolioService}
	portfolioGroup := app.Group("/api/v1/portfolio", middleware.RequireAuth())
	portfolioGroup.Get("/me", portfolioHandlers.Me)
	portfolioGroup.Post("/buy", portfolioHandlers.Buy)
	portfolioGroup.Post("/sell", portfolioHandlers.Sell)
	portfolioGroup.Get("/investments", portfolioHandlers.Investments)

	return app, db, rdb, nil
}
