package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/internal/config"
	"github.com/reviewhub/reviewhub/internal/database"
	"github.com/reviewhub/reviewhub/internal/handler"
	"github.com/reviewhub/reviewhub/internal/mailer"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/internal/service"
	"github.com/reviewhub/reviewhub/pkg/logger"
)

func main() {
	cfg := config.Load()

	isProduction := cfg.Environment == "production"
	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis backs the auth-endpoint rate limiter
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	genreRepo := repository.NewGenreRepository(database.DB)
	titleRepo := repository.NewTitleRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	commentRepo := repository.NewCommentRepository(database.DB)

	// Initialize services
	smtpMailer := mailer.NewSMTPMailer(cfg)
	authService := service.NewAuthService(userRepo, smtpMailer, cfg.JWTSecret, cfg.JWTExpiry, cfg.CodeTTL)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, commentRepo, titleRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(reviewService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	handler.RegisterValidators()

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(isProduction))

	v1 := router.Group("/api/v1")

	// Signup / token exchange, rate limited to keep code issuance from
	// being abused as a mail cannon
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Middleware())
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/token", authHandler.Token)
		auth.POST("/resend", authHandler.Resend)
	}

	// Public reads
	v1.GET("/categories", catalogHandler.ListCategories)
	v1.GET("/genres", catalogHandler.ListGenres)
	v1.GET("/titles", titleHandler.List)
	v1.GET("/titles/:title_id", titleHandler.Get)
	v1.GET("/titles/:title_id/reviews", reviewHandler.List)
	v1.GET("/titles/:title_id/reviews/:review_id", reviewHandler.Get)
	v1.GET("/titles/:title_id/reviews/:review_id/comments", commentHandler.List)
	v1.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Get)

	// Authenticated mutations; fine-grained rules live in the permissions
	// package and the services
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.POST("/categories", catalogHandler.CreateCategory)
		protected.DELETE("/categories/:slug", catalogHandler.DeleteCategory)
		protected.POST("/genres", catalogHandler.CreateGenre)
		protected.DELETE("/genres/:slug", catalogHandler.DeleteGenre)

		protected.POST("/titles", titleHandler.Create)
		protected.PATCH("/titles/:title_id", titleHandler.Update)
		protected.DELETE("/titles/:title_id", titleHandler.Delete)

		protected.POST("/titles/:title_id/reviews", reviewHandler.Create)
		protected.PATCH("/titles/:title_id/reviews/:review_id", reviewHandler.Update)
		protected.DELETE("/titles/:title_id/reviews/:review_id", reviewHandler.Delete)

		protected.POST("/titles/:title_id/reviews/:review_id/comments", commentHandler.Create)
		protected.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Update)
		protected.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Delete)

		protected.GET("/users", userHandler.List)
		protected.POST("/users", userHandler.Create)
		protected.GET("/users/me", userHandler.GetMe)
		protected.PATCH("/users/me", userHandler.UpdateMe)
		protected.GET("/users/:username", userHandler.Get)
		protected.PATCH("/users/:username", userHandler.Update)
		protected.DELETE("/users/:username", userHandler.Delete)
	}

	// Only partial updates are supported on titles
	v1.PUT("/titles/:title_id", titleHandler.MethodNotAllowed)

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
