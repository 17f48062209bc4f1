package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mindful-chat/internal/config"
	"mindful-chat/internal/db"
	"mindful-chat/internal/domain"
	"mindful-chat/internal/llm"
	"mindful-chat/internal/repository"
	"mindful-chat/internal/service"
)

func main() {
	sessionFlag := flag.String("session", "", "session id to resume (a new one is generated when empty)")
	flag.Parse()

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	history, closeStore, err := openHistory(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, zap.NewStdLog(logger))
	chatSvc := service.NewChatService(logger, history, llmClient, service.NewPromptAssembler(), cfg.LLMTimeout)

	sessionID := strings.TrimSpace(*sessionFlag)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fmt.Println("===== MindfulBot =====")
	fmt.Printf("Sesión: %s\n", sessionID)
	fmt.Println("Comandos: /history, /clear, /exit")

	if turns, err := chatSvc.History(ctx, sessionID); err == nil {
		printTurns(turns)
	}

	for {
		fmt.Print("\nTú: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		switch line {
		case "":
			continue
		case "/exit":
			return
		case "/history":
			turns, err := chatSvc.History(ctx, sessionID)
			if err != nil {
				fmt.Printf("error: %s\n", domain.MessageOf(err, err.Error()))
				continue
			}
			printTurns(turns)
			continue
		case "/clear":
			if err := chatSvc.Clear(ctx, sessionID); err != nil {
				fmt.Printf("error: %s\n", domain.MessageOf(err, err.Error()))
				continue
			}
			fmt.Println("MindfulBot: Conversation cleared. How can I assist you now?")
			continue
		}

		res, err := chatSvc.HandleTurn(ctx, sessionID, line, nil)
		if err != nil {
			fmt.Printf("MindfulBot: %s\n", domain.MessageOf(err, err.Error()))
			continue
		}
		fmt.Printf("MindfulBot: %s\n", res.ResponseText)
	}
}

// openHistory prefiere Redis si está configurado y cae a Postgres en otro caso.
func openHistory(ctx context.Context, cfg *config.Config) (repository.HistoryRepository, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err == nil {
			return service.NewRedisHistoryStore(client, cfg.HistoryTTL), func() { client.Close() }, nil
		}
		client.Close()
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return repository.NewPgHistoryRepository(pool), pool.Close, nil
}

func printTurns(turns []domain.Turn) {
	for _, t := range turns {
		who := "Tú"
		if t.Role == domain.RoleModel {
			who = "MindfulBot"
		}
		fmt.Printf("%s: %s\n", who, t.Text)
	}
}
