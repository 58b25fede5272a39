package main

import (
	"coachfit/coaching-app/internal/api"
	"coachfit/coaching-app/internal/config"
	"coachfit/coaching-app/internal/repository/mongo"
	"coachfit/coaching-app/internal/service"
	"coachfit/coaching-app/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.StandardLogger()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.WithError(err).Fatal("could not load config")
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.Info("starting coaching app server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureProgramAssignmentIndexes(ctx, appDB.Collection("program_assignments"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("program_progress"))
		mongo.EnsureScheduleIndexes(ctx, appDB.Collection("program_schedule"))
		mongo.EnsureRuleIndexes(ctx, appDB.Collection("program_progression_rules"))
		mongo.EnsureTemplateIndexes(ctx, appDB.Collection("workout_templates"))
		mongo.EnsureWorkoutAssignmentIndexes(ctx, appDB.Collection("workout_assignments"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureLogIndexes(ctx, appDB.Collection("workout_logs"))
		mongo.EnsurePhotoIndexes(ctx, appDB.Collection("progress_photos"))
		logger.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	programAssignmentRepo := mongo.NewMongoProgramAssignmentRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	scheduleRepo := mongo.NewMongoScheduleRepository(appDB)
	ruleRepo := mongo.NewMongoRuleRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutAssignmentRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	logRepo := mongo.NewMongoLogRepository(appDB)
	photoRepo := mongo.NewMongoPhotoRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	coachService := service.NewCoachService(userRepo)
	exerciseService := service.NewExerciseService(exerciseRepo)
	programService := service.NewProgramService(programRepo, programAssignmentRepo, progressRepo, userRepo)
	templateService := service.NewTemplateService(templateRepo, exerciseRepo)
	progressionService := service.NewProgressionService(ruleRepo, templateRepo, programRepo, exerciseRepo)
	scheduleService := service.NewScheduleService(scheduleRepo, programRepo, templateRepo, progressionService)
	workoutDayService := service.NewWorkoutDayService(
		userRepo, programAssignmentRepo, progressRepo, scheduleRepo, programRepo,
		templateRepo, workoutRepo, sessionRepo, logRepo, logger,
	)
	clientService := service.NewClientService(userRepo, photoRepo, fileStorage)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	api.SetupRoutes(
		router, cfg.JWT.Secret,
		authService, coachService, clientService, exerciseService,
		programService, templateService, scheduleService, progressionService,
		workoutDayService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.WithField("address", cfg.Server.Address).Info("server starting")

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen and serve error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exiting")
}
