package bootstrap

import (
	"context"
	"log"

	"docuchat-be/internal/config"
	"docuchat-be/internal/controller"
	"docuchat-be/internal/handler"
	"docuchat-be/internal/pkg/logger"
	"docuchat-be/internal/repository/memory"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/internal/service"
	"docuchat-be/internal/websocket"
	"docuchat-be/pkg/llm/factory"
	pktNats "docuchat-be/pkg/nats"
	"docuchat-be/pkg/ragie"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	GenerationService service.IGenerationService
	StreamService     service.IStreamService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	sysLogger.Info("Bootstrap", "Wiring container", map[string]interface{}{
		"environment":     cfg.App.Environment,
		"sync_generation": cfg.Chat.SyncGeneration,
	})

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. External services
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	retriever := ragie.NewClient(cfg.Ragie.BaseURL, cfg.Ragie.APIKey)

	activeCache := memory.NewActiveSessionCache()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Chat.GenerationTopic, pubSub)
	generationService := service.NewGenerationService(
		pubSub,
		cfg.Chat.GenerationTopic,
		uowFactory,
		retriever,
		llmProvider,
		natsPub,
		cfg.Ragie.TopK,
	)

	chatService := service.NewChatService(
		uowFactory,
		publisherService,
		generationService,
		activeCache,
		natsPub,
		cfg.Chat.SyncGeneration,
		cfg.Ai.LLMModel,
		cfg.Chat.DefaultTemp,
	)

	var streamService service.IStreamService
	if natsSub != nil {
		streamService = service.NewStreamService(natsSub, wsHub)
	}

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		GenerationService: generationService,
		StreamService:     streamService,
		StreamHandler:     streamHandler,
		WebSocketHub:      wsHub,
	}
}
