package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayfind/internal/config"
	"stayfind/internal/handler"
	"stayfind/internal/logger"
	"stayfind/internal/repository"
	"stayfind/internal/scraper"
	"stayfind/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	log.Info("stayfind starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	gin.SetMode(cfg.Server.GinMode)

	// Storage is optional: without a DSN searches still work, they just
	// are not persisted.
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.DSN != "" {
		repo, err = repository.NewPostgresRepository(
			cfg.PostgreSQL.DSN,
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		log.Info("connected to PostgreSQL")
	} else {
		log.Warn("no database configured, search logging disabled")
	}

	groqClient := service.NewGroqClient(&cfg.Groq, log)
	if cfg.Groq.Enabled {
		log.Info("completion client initialized",
			zap.String("api_base", cfg.Groq.APIBase),
			zap.String("model", cfg.Groq.ChatModel))
	} else {
		log.Warn("completion API disabled, using pattern extraction and canned replies only",
			zap.String("hint", "set GROQ_API_KEY to enable"))
	}

	sessions := scraper.NewSessionPool(&cfg.Scraper, log)
	defer sessions.Shutdown()
	pipeline := scraper.NewPipeline(&cfg.Scraper, sessions, log)

	extractor := service.NewExtractor(groqClient, log)
	var store service.SearchStore
	if repo != nil {
		store = repo
	}
	chatService := service.NewChatService(extractor, groqClient, pipeline, store, cfg, log)

	chatHandler := handler.NewChatHandler(chatService, log)
	feedbackHandler := handler.NewFeedbackHandler(repo, log)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "stayfind",
			"version": Version,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
