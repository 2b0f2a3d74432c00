package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/causafund/backend/internal/config"
	"github.com/causafund/backend/internal/database"
	"github.com/causafund/backend/internal/jobs"
	"github.com/causafund/backend/internal/queue"
	"github.com/causafund/backend/internal/routes"
	"github.com/causafund/backend/internal/services/donation"
	"github.com/causafund/backend/internal/services/exchange"
)

func main() {
	cfg := config.Load()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	jobQueue := queue.NewClient(redisClient, db)

	// Exchange rates feed the donation service's VEF display amounts
	rates := exchange.NewService(db, cfg.Exchange.FeedURL)
	scheduler := jobs.StartScheduler(rates, cfg.Exchange.RefreshInterval)

	// Settlement worker pool for provider webhook confirmations
	donationService := donation.NewService(db, rates)
	settlementJob := jobs.NewSettlementJob(donationService)
	settlementWorker := queue.NewWorker(jobQueue, queue.JobTypeSettlePayment, settlementJob.Handle, 4)
	settlementWorker.Start()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, db, jobQueue, rates)

	srv := startServer(router, cfg.Server)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	settlementWorker.Stop()
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// startServer starts the HTTP server in a goroutine
func startServer(router *gin.Engine, serverConfig config.ServerConfig) *http.Server {
	srv := &http.Server{
		Addr:         ":" + serverConfig.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(serverConfig.WriteTimeout) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", serverConfig.Port)
	return srv
}
