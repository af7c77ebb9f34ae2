package main

import (
	"collaborative-hiring-intake/internal/collab"
	"collaborative-hiring-intake/internal/config"
	"collaborative-hiring-intake/internal/db"
	"collaborative-hiring-intake/internal/form"
	"collaborative-hiring-intake/internal/loxo"
	"collaborative-hiring-intake/internal/middleware"
	"collaborative-hiring-intake/internal/worker"
	"collaborative-hiring-intake/redis"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis cache
	cache := redis.NewCache(config.AppConfig.RedisAddress)
	defer cache.Close()

	// Worker pool draining the fire-and-forget persistence queue
	pool := worker.NewPool(config.AppConfig.WorkerCount, 1000)

	// Initialize repository
	formRepo := form.NewRepository(db.AppDb)
	// External publish collaborator
	loxoClient := loxo.NewClient(
		config.AppConfig.LoxoBaseURL,
		config.AppConfig.LoxoAgencySlug,
		config.AppConfig.LoxoAPIKey,
	)
	// Initialize service
	formService := form.NewService(formRepo, loxoClient, cache)
	// Initialize handler
	formHandler := form.NewHandler(formService)

	// Collaboration hub: one event loop for every room
	bridge := collab.NewBridge(formRepo, pool)
	hub := collab.NewHub(formRepo, bridge)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// Initialize Gin router
	router := gin.Default()

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ErrorHandler())

	// Form routes
	router.GET("/hiring-forms", formHandler.List)
	router.POST("/hiring-forms", formHandler.Create)
	router.GET("/hiring-forms/:formId", formHandler.Show)
	router.DELETE("/hiring-forms/:formId", formHandler.Delete)
	router.POST("/hiring-forms/:formId/save", formHandler.Save)
	router.POST("/hiring-forms/:formId/sync", formHandler.Sync)

	// Realtime collaboration endpoint
	router.GET("/ws", collab.ServeWS(hub))

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	// Stop the hub, then flush pending persistence writes
	stopHub()
	pool.Shutdown()

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
