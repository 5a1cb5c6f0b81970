package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArtlessApps/ruckplan/internal/config"
	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/ArtlessApps/ruckplan/internal/handler"
	"github.com/ArtlessApps/ruckplan/internal/middleware"
	"github.com/ArtlessApps/ruckplan/internal/repository"
	"github.com/ArtlessApps/ruckplan/internal/service"
	"github.com/ArtlessApps/ruckplan/internal/telemetry"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	AuthClient  service.FirebaseAuthClient
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	redisRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	refreshTokenRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)
	programRepo := repository.NewMongoProgramRepository(deps.MongoDB)
	configRepo := repository.NewMongoScheduleConfigRepository(deps.MongoDB)
	completionRepo := repository.NewMongoCompletionRepository(deps.MongoDB)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := configRepo.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
		if err := completionRepo.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
		// Mongo's TTL monitor can lag; clear leftover expired tokens on boot.
		if err := refreshTokenRepo.DeleteExpired(ctx); err != nil {
			log.Printf("Warning: failed to sweep expired refresh tokens: %v", err)
		}
		cancel()
	}

	// The catalog is read on every plan build, so reads go through redis
	cachedProgramRepo := repository.NewCachedProgramRepository(programRepo, redisRepo)

	// S3 holds program cover images. Startup survives without it; uploads
	// just fail until the store is reachable.
	var fileRepo domain.FileRepository
	s3Repo, err := repository.NewSeaweedS3Repository(context.Background(), deps.Config.S3)
	if err != nil {
		log.Printf("Warning: Failed to initialize S3 repository: %v", err)
	} else {
		fileRepo = s3Repo
	}

	// Initialize services
	tokenService := service.NewTokenService(deps.Config.JWT, refreshTokenRepo, userRepo)
	authService := service.NewAuthService(userRepo, tokenService, deps.AuthClient)
	planService := service.NewPlanService(cachedProgramRepo, configRepo, completionRepo, redisRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	programHandler := handler.NewProgramHandler(cachedProgramRepo, fileRepo, deps.Config.Server.MaxUploadSizeMB)
	planHandler := handler.NewPlanHandler(planService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RuckPlan API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.TracingMiddleware())
	app.Use(telemetry.MetricsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "ruckplan",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.LoginOrRegister)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.VerifyRuckPlanToken(deps.Config.JWT.Secret), authHandler.LogoutAll)

	// ===========================================
	// PROGRAM CATALOG - public read, admin write
	// ===========================================
	v1.Get("/programs", programHandler.ListPrograms)
	v1.Get("/programs/:id", programHandler.GetProgram)

	adminPrograms := v1.Group("/programs")
	adminPrograms.Use(middleware.VerifyRuckPlanToken(deps.Config.JWT.Secret))
	adminPrograms.Use(middleware.AuthorizeRole(domain.RoleAdmin))
	adminPrograms.Post("/", programHandler.CreateProgram)
	adminPrograms.Put("/:id", programHandler.UpdateProgram)
	adminPrograms.Delete("/:id", programHandler.DeleteProgram)
	adminPrograms.Post("/:id/image", programHandler.UploadProgramImage)

	// ===========================================
	// MEMBER API - /v1/me/* (requires 'member' role)
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.VerifyRuckPlanToken(deps.Config.JWT.Secret))
	me.Use(middleware.AuthorizeRole(domain.RoleMember, domain.RoleAdmin))

	me.Get("/plan", planHandler.GetPlan)
	me.Get("/plan/today", planHandler.GetTodayView)
	me.Get("/plan/summary", planHandler.GetProgressSummary)
	me.Post("/enroll", planHandler.Enroll)

	me.Get("/schedule-config", planHandler.GetScheduleConfig)
	me.Patch("/schedule-config", planHandler.UpdateScheduleConfig)
	me.Delete("/schedule-config", planHandler.Unenroll)

	meCompletions := me.Group("/completions")
	meCompletions.Get("/", planHandler.ListCompletions)
	// Watch clients replay logs after connectivity gaps
	meCompletions.Post("/", middleware.IdempotencyMiddleware(deps.RedisClient, 24*time.Hour), planHandler.LogCompletion)
	meCompletions.Delete("/:id", planHandler.DeleteCompletion)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
