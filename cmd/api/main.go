package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/joseph0711/grading-system-sub000/internal/config"
	"github.com/joseph0711/grading-system-sub000/internal/database"
	"github.com/joseph0711/grading-system-sub000/internal/handler"
	"github.com/joseph0711/grading-system-sub000/internal/middleware"
	"github.com/joseph0711/grading-system-sub000/internal/models"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
	"github.com/joseph0711/grading-system-sub000/internal/router"
	"github.com/joseph0711/grading-system-sub000/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Enrollment{}, &models.GradingCriteria{}, &models.ScoreRecord{}, &models.PeerReview{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	peerReviewRepo := repository.NewPeerReviewRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, validate, cfg.SessionSecret, cfg.SessionTTL, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	scoreService := service.NewScoreService(scoreRepo, criteriaRepo, courseRepo, redisClient, cfg.ScoreCacheTTL, validate, logger)
	criteriaService := service.NewCriteriaService(criteriaRepo, scoreService, validate, logger)
	peerReviewService := service.NewPeerReviewService(peerReviewRepo, scoreService, courseRepo, validate, logger)
	exportService := service.NewExportService(scoreService, logger)

	authHandler := handler.NewAuthHandler(authService, cfg.SessionTTL, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	criteriaHandler := handler.NewCriteriaHandler(criteriaService, courseService, logger)
	scoreHandler := handler.NewScoreHandler(scoreService, exportService, courseService, logger)
	peerReviewHandler := handler.NewPeerReviewHandler(peerReviewService, courseService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		CourseHandler:     courseHandler,
		CriteriaHandler:   criteriaHandler,
		ScoreHandler:      scoreHandler,
		PeerReviewHandler: peerReviewHandler,
		SessionMiddleware: middleware.SessionProtected(cfg.SessionSecret, authService),
		LoginRateLimit:    middleware.RateLimit("login", cfg.LoginRateMax, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
