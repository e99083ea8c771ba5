package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"vibeshare/internal/cache"
	"vibeshare/internal/config"
	"vibeshare/internal/database"
	"vibeshare/internal/handler"
	"vibeshare/internal/mail"
	"vibeshare/internal/redis"
	"vibeshare/internal/repository"
	"vibeshare/internal/service"
)

func Run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to MongoDB
	db, mongoClient, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("[Server] Mongo disconnect: %v", err)
		}
	}()

	// 3. Connect to Redis (one-time login codes)
	redisClient, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	// 5. Services
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenMaxAge)
	userService := service.NewUserService(userRepo, postRepo)
	postService := service.NewPostService(postRepo, userRepo)

	codes := cache.NewRedisCodeRegistry(redisClient.Client)
	mailer := mail.NewBrevoClient(cfg.BrevoAPIKey, cfg.MailSenderEmail, cfg.MailSenderName)
	verificationService := service.NewVerificationService(userRepo, codes, mailer)

	googleVerifier := service.NewGoogleVerifier(cfg.GoogleClientID)
	googleService := service.NewGoogleAuthService(userRepo, googleVerifier)

	// 6. Handlers and routes
	authHandler := handler.NewAuthHandler(userService, tokenService, mediaService, verificationService, googleService)
	userHandler := handler.NewUserHandler(userService, mediaService)
	postHandler := handler.NewPostHandler(postService, mediaService)

	router := NewRouter(RouterConfig{
		AuthHandler:  authHandler,
		UserHandler:  userHandler,
		PostHandler:  postHandler,
		TokenService: tokenService,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
