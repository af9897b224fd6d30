package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/harborbank/ledger-service/internal/auth"
	"github.com/harborbank/ledger-service/internal/cache"
	"github.com/harborbank/ledger-service/internal/config"
	"github.com/harborbank/ledger-service/internal/events"
	"github.com/harborbank/ledger-service/internal/handler"
	"github.com/harborbank/ledger-service/internal/ledger"
	"github.com/harborbank/ledger-service/internal/middleware"
	"github.com/harborbank/ledger-service/internal/models"
	"github.com/harborbank/ledger-service/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var accounts store.AccountStore
	var users store.UserStore

	switch cfg.Store {
	case "memory":
		mem := store.NewMemoryStore()
		accounts, users = mem, mem
		log.Println("Using in-memory store")
	default:
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}

		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		accounts, users = pg, pg
	}

	// Redis is optional: without it the ledger runs cache-less and publishes
	// no events.
	var views *cache.ViewCache[models.Account]
	var publisher *events.Publisher
	if cfg.Redis.Addr != "" {
		redis, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()
		views = cache.NewViewCache[models.Account](redis.Client, 0)
		publisher = events.NewPublisher(redis.Client)
	}

	ledgerSvc := ledger.NewService(accounts, views, publisher, time.Duration(cfg.Ledger.StorageTimeout))
	authSvc := auth.NewService(users)

	accountHandler := handler.NewAccountHandler(ledgerSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.RefreshToken)
	}

	accountRoutes := router.Group("/api/accounts", middleware.AuthMiddleware())
	{
		accountRoutes.POST("", accountHandler.OpenAccount)
		accountRoutes.GET("", accountHandler.ListAccounts)
		accountRoutes.GET("/:id", accountHandler.GetAccount)
		accountRoutes.PUT("/:id/deposit", accountHandler.Deposit)
		accountRoutes.PUT("/:id/withdraw", accountHandler.Withdraw)
		accountRoutes.DELETE("/:id", accountHandler.DeleteAccount)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Ledger service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
