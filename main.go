package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"quizbox/internal/auth"
	"quizbox/internal/config"
	"quizbox/internal/dataset"
	"quizbox/internal/event"
	"quizbox/internal/handlers"
	"quizbox/internal/history"
	"quizbox/internal/models"
	"quizbox/internal/session"
	"quizbox/internal/storage"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.New()

	data, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		log.Fatalf("Failed to load question dataset: %v", err)
	}
	log.Printf("Loaded dataset %q with %d questions", data.Title, data.QuestionCount)

	store := openStorage(cfg)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	// Stores and engine. The history store follows the auth store's
	// current user; the engine hands finished results to history.
	authStore := auth.New(store, nil)
	historyStore := history.New(store)
	authStore.Subscribe(func(user *models.User) {
		if user != nil {
			historyStore.SetUser(user.ID)
		} else {
			historyStore.SetUser("")
		}
	})
	engine := session.New(data, historyStore, nil)
	defer engine.Close()

	authHandler := handlers.NewAuthHandler(authStore)
	sessionHandler := handlers.NewSessionHandler(engine, data)
	historyHandler := handlers.NewHistoryHandler(historyStore)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", func(c *gin.Context) {
			authHandler.SignUp(c)
			if publisher != nil {
				publisher.Publish("auth.signed_up", gin.H{"timestamp": time.Now()})
			}
		})
		authGroup.POST("/signin", func(c *gin.Context) {
			authHandler.SignIn(c)
			if publisher != nil {
				publisher.Publish("auth.signed_in", gin.H{"timestamp": time.Now()})
			}
		})
		authGroup.POST("/signin/apple", authHandler.SignInWithApple)
		authGroup.POST("/signin/google", authHandler.SignInWithGoogle)
		authGroup.POST("/signout", func(c *gin.Context) {
			authHandler.SignOut(c)
			if publisher != nil {
				publisher.Publish("auth.signed_out", gin.H{"timestamp": time.Now()})
			}
		})
		authGroup.GET("/me", authHandler.Me)
	}

	quiz := r.Group("/quiz")
	{
		quiz.GET("/info", sessionHandler.Info)
		quiz.GET("/state", sessionHandler.GetState)
		quiz.POST("/start", func(c *gin.Context) {
			sessionHandler.StartQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.session.started", gin.H{"timestamp": time.Now()})
			}
		})
		quiz.POST("/answer", sessionHandler.Answer)
		quiz.POST("/next", func(c *gin.Context) {
			sessionHandler.Next(c)
			if publisher != nil && engine.State() == session.StateEnd {
				publisher.Publish("quiz.session.completed", gin.H{"timestamp": time.Now()})
			}
		})
		quiz.POST("/review", func(c *gin.Context) {
			sessionHandler.Review(c)
			if publisher != nil && engine.State() == session.StateReview {
				publisher.Publish("quiz.review.started", gin.H{"timestamp": time.Now()})
			}
		})
		quiz.POST("/menu", sessionHandler.MainMenu)
	}

	hist := r.Group("/history")
	{
		hist.GET("/", historyHandler.List)
		hist.GET("/stats", historyHandler.Stats)
		hist.GET("/:id", historyHandler.GetResult)
		hist.DELETE("/", func(c *gin.Context) {
			historyHandler.Clear(c)
			if publisher != nil {
				publisher.Publish("history.cleared", gin.H{"timestamp": time.Now()})
			}
		})
	}

	r.Run(cfg.Addr)
}

func openStorage(cfg *config.Config) storage.Store {
	switch cfg.StorageBackend {
	case "redis":
		store, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		return store
	case "mongo":
		store, err := storage.NewMongoStore(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		return store
	case "memory":
		log.Println("Using in-memory storage, results will not survive a restart")
		return storage.NewMemoryStore()
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q", cfg.StorageBackend)
		return nil
	}
}
