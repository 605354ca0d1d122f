package main // Entry point package

import (
	"log"  // Logging library
	"time" // Pool lifetime arithmetic

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/LeMizoo/bygagoos-api/internal/config"
	"github.com/LeMizoo/bygagoos-api/internal/database"
	"github.com/LeMizoo/bygagoos-api/internal/handler"
	"github.com/LeMizoo/bygagoos-api/internal/middleware"
	"github.com/LeMizoo/bygagoos-api/internal/queue"
	"github.com/LeMizoo/bygagoos-api/internal/repository"
	"github.com/LeMizoo/bygagoos-api/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.DBMaxConns, time.Duration(cfg.DBConnLifeMin)*time.Minute)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: without it the limiter and the price-list cache
	// degrade to no-ops, everything else keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	orders := repository.NewOrderRepo(db)
	stocks := repository.NewStockRepo(db)
	employees := repository.NewEmployeeRepo(db)
	settings := repository.NewSettingsRepo(db)

	e := echo.New()

	// The limiter is attached per route group, after the session middleware
	// on protected groups, so user-keyed strategies see the resolved user id
	// instead of keying every request as anonymous.
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterPublic(e, rdb, limit)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret, users, limit)
	router.RegisterModules(e, router.ModuleHandlers{
		Dashboard: handler.NewDashboardHandler(orders),
		Orders:    handler.NewOrderHandler(orders),
		Stocks:    handler.NewStockHandler(stocks),
		Employees: handler.NewEmployeeHandler(employees),
		Settings:  handler.NewSettingsHandler(settings),
		Admin:     handler.NewAdminHandler(users, tokens),
	}, cfg.JWTSecret, users, limit)

	// Audit consumer runs for the life of the process and reconnects on
	// broker failures by itself.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
