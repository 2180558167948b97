package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studiumhq/studium-api/internal/config"
	"github.com/studiumhq/studium-api/internal/database"
	"github.com/studiumhq/studium-api/internal/handler"
	"github.com/studiumhq/studium-api/internal/middleware"
	"github.com/studiumhq/studium-api/internal/models"
	"github.com/studiumhq/studium-api/internal/repository"
	"github.com/studiumhq/studium-api/internal/router"
	"github.com/studiumhq/studium-api/internal/service"
	"github.com/studiumhq/studium-api/pkg/storage"
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

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Course{},
		&models.StudentCourse{},
		&models.Module{},
		&models.Material{},
		&models.MaterialProgress{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestAttempt{},
		&models.ChatChannel{},
		&models.Message{},
		&models.Notification{},
		&models.NotificationSettings{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn := connectNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if blob, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger); err != nil {
		logger.Warn().Err(err).Msg("file storage unavailable, submission uploads disabled")
	} else {
		uploader = uploaderAdapter{blob}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	progressRepo := repository.NewMaterialProgressRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	testRepo := repository.NewTestRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewNotificationSettingsRepository(db)

	authService := service.NewAuthService(userRepo, validate, logger, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	profileService := service.NewProfileService(userRepo, settingsRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, assignmentRepo, testRepo, logger)
	materialService := service.NewMaterialService(materialRepo, progressRepo, enrollmentRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, enrollmentRepo, uploader, logger)
	quizService := service.NewQuizService(testRepo, attemptRepo, enrollmentRepo, validate, logger)
	gradeService := service.NewGradeService(courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, testRepo, attemptRepo, redisClient, logger)
	calendarService := service.NewCalendarService(enrollmentRepo, assignmentRepo, testRepo, logger)
	chatService := service.NewChatService(channelRepo, messageRepo, userRepo, enrollmentRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	chatService.Start(runCtx)
	notificationService.Start(runCtx)

	authHandler := handler.NewAuthHandler(authService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	courseHandler := handler.NewCourseHandler(courseService, materialService, assignmentService, quizService, gradeService, chatService, logger)
	materialHandler := handler.NewMaterialHandler(materialService, logger)
	submissionHandler := handler.NewSubmissionHandler(assignmentService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)
	calendarHandler := handler.NewCalendarHandler(calendarService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		ProfileHandler:      profileHandler,
		CourseHandler:       courseHandler,
		MaterialHandler:     materialHandler,
		SubmissionHandler:   submissionHandler,
		QuizHandler:         quizHandler,
		ChatHandler:         chatHandler,
		NotificationHandler: notificationHandler,
		CalendarHandler:     calendarHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis url not configured, caching and fan-out degraded")
		return nil
	}
	client, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, caching and fan-out degraded")
		return nil
	}
	return client
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, cross-node events degraded")
		return nil
	}
	return conn
}

// uploaderAdapter bridges the blob storage client to the service interface.
type uploaderAdapter struct {
	blob *storage.Service
}

func (u uploaderAdapter) Upload(ctx context.Context, folder, name string, reader io.Reader, size int64) (service.UploadResult, error) {
	result, err := u.blob.Upload(ctx, folder, name, reader, size)
	if err != nil {
		return service.UploadResult{}, err
	}
	return service.UploadResult{URL: result.URL, Name: result.Name, Size: result.Size}, nil
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
