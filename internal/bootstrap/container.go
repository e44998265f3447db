package bootstrap

import (
	"context"
	"log"

	"ai-interviewer-be/internal/config"
	"ai-interviewer-be/internal/constant"
	"ai-interviewer-be/internal/controller"
	"ai-interviewer-be/internal/pkg/logger"
	"ai-interviewer-be/internal/repository/implementation"
	"ai-interviewer-be/internal/repository/memory"
	"ai-interviewer-be/internal/service"
	"ai-interviewer-be/internal/websocket"
	"ai-interviewer-be/pkg/llm/factory"

	pktNats "ai-interviewer-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	InterviewController controller.InterviewController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Live session registry
	sessionRegistry := memory.NewSessionRegistry()

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
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
	wsLogger := logger.NewIsolatedLogger("logs/instructions.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(constant.InstructionTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, constant.InstructionTopic, wsHub, sysLogger)

	sessionRepo := implementation.NewInterviewSessionRepository(db)
	interviewService := service.NewInterviewService(
		sessionRepo,
		sessionRegistry,
		llmProvider,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Interview,
	)

	// 4. Controllers
	interviewController := controller.NewInterviewController(interviewService, wsHub)

	return &Container{
		InterviewController: interviewController,
		ConsumerService:     consumerService,
		WebSocketHub:        wsHub,
	}
}
