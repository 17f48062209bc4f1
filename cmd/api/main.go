package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mindful-chat/internal/config"
	"mindful-chat/internal/db"
	apihttp "mindful-chat/internal/http"
	"mindful-chat/internal/llm"
	"mindful-chat/internal/logging"
	"mindful-chat/internal/repository"
	"mindful-chat/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	var history repository.HistoryRepository = repository.NewPgHistoryRepository(pool)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using postgres history", zap.Error(err))
		} else {
			history = service.NewRedisHistoryStore(redisClient, cfg.HistoryTTL)
			logger.Info("history store", zap.String("backend", "redis"))
		}
		cancel()
	}

	postRepo := repository.NewPgPostRepository(pool)
	answerRepo := repository.NewPgAnswerRepository(pool)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zap.NewStdLog(logger))

	chatSvc := service.NewChatService(logger, history, llmClient, service.NewPromptAssembler(), cfg.LLMTimeout)
	communitySvc := service.NewCommunityService(logger, postRepo, answerRepo, cfg.CommunityPage)
	sessionSvc := service.NewSessionService(cfg.SessionSecret, cfg.SessionTTL)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	communityHandler := apihttp.NewCommunityHandler(logger, communitySvc)
	router := apihttp.NewRouter(logger, sessionSvc,
		apihttp.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure},
		chatHandler, communityHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
