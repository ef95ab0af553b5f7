package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/coach-assistant/internal/api"
	"alcyxob/coach-assistant/internal/config"
	"alcyxob/coach-assistant/internal/intent"
	"alcyxob/coach-assistant/internal/llm"
	"alcyxob/coach-assistant/internal/protocol"
	"alcyxob/coach-assistant/internal/repository/mongo"
	"alcyxob/coach-assistant/internal/retrieval"
	"alcyxob/coach-assistant/internal/service"
	"alcyxob/coach-assistant/internal/storage"
	"alcyxob/coach-assistant/internal/verifier"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Coach Assistant Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureDietIndexes(ctx, appDB.Collection("diets"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureMealPlanIndexes(ctx, appDB.Collection("meal_plan_days"))
		mongo.EnsureFoodCategoryIndexes(ctx, appDB.Collection("food_categories"))
		mongo.EnsureContentIndexes(ctx, appDB.Collection("trainer_content"))
		mongo.EnsureUsageLogIndexes(ctx, appDB.Collection("content_usage_logs"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	dietRepo := mongo.NewMongoDietRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	mealPlanRepo := mongo.NewMongoMealPlanRepository(appDB)
	foodCategoryRepo := mongo.NewMongoFoodCategoryRepository(appDB)
	contentRepo := mongo.NewMongoContentRepository(appDB)
	usageLogRepo := mongo.NewMongoUsageLogRepository(appDB)

	// --- Initialize Assistant Pipeline ---
	log.Println("Initializing assistant pipeline...")
	generator := llm.NewOpenAIClient(cfg.OpenAI)
	classifier := intent.NewKeywordClassifier()
	searcher := retrieval.NewSearcher(contentRepo)
	dispatcher := protocol.NewDispatcher(dietRepo, workoutRepo, mealPlanRepo, foodCategoryRepo)
	dietVerifier := verifier.New(generator,
		verifier.WithMaxIterations(cfg.Assistant.MaxVerifierIterations),
		verifier.WithSimilarityThreshold(cfg.Assistant.SimilarityThreshold),
	)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	assistantService := service.NewAssistantService(
		userRepo, dietRepo, workoutRepo, mealPlanRepo, foodCategoryRepo, usageLogRepo,
		generator, classifier, searcher, dispatcher, dietVerifier,
		cfg.OpenAI, cfg.Assistant,
	)
	contentService := service.NewContentService(contentRepo, fileStorage)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, assistantService, contentService)

	// --- Start HTTP Server ---
	// WriteTimeout must cover a full model round trip plus verifier passes.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 4 * cfg.OpenAI.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
