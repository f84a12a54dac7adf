package main

import (
	"os"
	"strings"
	"time"

	"questionnaire-service/internal/cache"
	"questionnaire-service/internal/db"
	"questionnaire-service/internal/event"
	"questionnaire-service/internal/handlers"
	"questionnaire-service/internal/logger"
	"questionnaire-service/internal/repository"
	"questionnaire-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system env")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	client, err := db.Connect(mongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "questionnaire_db"
	}
	database := client.Database(dbName)

	if err := db.EnsureIndexes(database); err != nil {
		log.WithError(err).Fatal("failed to ensure indexes")
	}

	// RabbitMQ event publisher (optional)
	var publisher *event.Publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	if rabbitURL != "" && eventExchange != "" {
		publisher, err = event.NewPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer publisher.Close()
	} else {
		log.Info("RabbitMQ not configured, session events will not be published")
	}

	// Redis cache (optional)
	var questionnaireCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		questionnaireCache = cache.NewRedisCache(rdb)
	} else {
		log.Info("Redis not configured, questionnaire reads go straight to MongoDB")
	}

	// Repositories, services, handlers
	sessionRepo := repository.NewSessionRepository(database)
	questionnaireRepo := repository.NewQuestionnaireRepository(database)

	// a typed nil would defeat the service's nil-publisher check
	var sessionPublisher service.EventPublisher
	if publisher != nil {
		sessionPublisher = publisher
	}
	sessionService := service.NewSessionService(sessionRepo, sessionPublisher, log)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepo, questionnaireCache, log)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	historyHandler := handlers.NewHistoryHandler(sessionService)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService)

	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/questions", questionnaireHandler.GetQuestionnaire)

		api.POST("/responses", sessionHandler.SaveResponses)
		api.GET("/responses", sessionHandler.GetResponses)
		api.PUT("/responses", sessionHandler.UpdateScore)

		api.GET("/history", historyHandler.GetHistory)

		api.POST("/sessions", sessionHandler.StartSession)
		api.DELETE("/sessions/:id", sessionHandler.DeleteSession)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
