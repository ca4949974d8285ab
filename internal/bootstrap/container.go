package bootstrap

import (
	"context"
	"log"

	"legal-assistant-be/internal/config"
	"legal-assistant-be/internal/controller"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/service"
	"legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/analysis"
	"legal-assistant-be/pkg/docctx"
	"legal-assistant-be/pkg/llm/factory"

	pktNats "legal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const assistantEventsTopic = "ASSISTANT_EVENTS"

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Gateways
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	analyzer := analysis.NewLLMAnalyzer(llmProvider, cfg.Ai.AnalysisModel)

	// 3.5 Infrastructure
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

	// The shared document context store: Redis when reachable, otherwise
	// an in-process fallback so local development needs no services.
	var ctxStore docctx.Store
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory context store", err)
		ctxStore = docctx.NewMemoryStore()
	} else {
		ctxStore = docctx.NewRedisStore(rdb)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/assistant_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(assistantEventsTopic, pubSub)
	notifier := service.NewEventNotifier(publisherService, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		assistantEventsTopic,
		wsHub,
		natsPub,
		sysLogger,
	)

	sessionRegistry := memory.NewSessionRegistry()
	assistantService := service.NewAssistantService(
		sessionRegistry,
		ctxStore,
		analyzer,
		llmProvider,
		notifier,
		cfg.Assistant,
		cfg.Ai,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, wsHub, wsLogger),
		ConsumerService:     consumerService,
		WebSocketHub:        wsHub,
	}
}
