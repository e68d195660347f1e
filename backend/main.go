package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"onlinecourse/backend/config"
	"onlinecourse/backend/middleware"
	"onlinecourse/backend/routes"
	"onlinecourse/backend/store"
	"onlinecourse/backend/utils"
)

// @title Online Course API
// @version 1.0
// @description Courses, enrollments and graded multiple-choice exams.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalw("error initializing database", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "onlinecourse",
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, store.New(db, logger), cfg, logger)

	// Start server
	logger.Infow("server starting", "port", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
