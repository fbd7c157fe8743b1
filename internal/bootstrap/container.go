package bootstrap

import (
	"log"

	"knowledgebase-engine/internal/config"
	"knowledgebase-engine/internal/controller"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/internal/service"
	"knowledgebase-engine/pkg/cache"
	"knowledgebase-engine/pkg/embedding"
	"knowledgebase-engine/pkg/fts"
	pktNats "knowledgebase-engine/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController      controller.INoteController
	SearchController    controller.ISearchController
	TopicController     controller.ITopicController
	EmbeddingController controller.IEmbeddingController

	// Background services, run by main
	ConsumerService service.IConsumerService
	TopicService    service.ITopicService

	Logger        logger.ILogger
	ProviderState *embedding.ProviderState
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus for the embed-note pipeline
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider selection
	var provider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "jina":
		provider = embedding.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	default:
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	state := embedding.NewProviderState()
	state.Init(provider.Model(), provider.Dimensions())

	// NATS domain event bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// Redis query-embedding cache
	var queryCache cache.QueryEmbeddingCache = cache.NoopQueryCache{}
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	redisClient := redis.NewClient(opt)
	queryCache = cache.NewRedisQueryCache(redisClient, cfg.Search.QueryCacheTTL)

	ftsProvider := fts.NewPostgresProvider(db)

	// Services
	topicService := service.NewTopicService(uowFactory, state, eventPublisher, service.TopicServiceConfig{
		MinSimilarity:  cfg.Search.ClassifyFloor,
		TopK:           cfg.Search.ClassifyTopK,
		DrainInterval:  cfg.Search.RecomputeEvery,
		WorkerPoolSize: cfg.Search.RecomputeWorkers,
	}, sysLogger)

	embeddingService := service.NewEmbeddingService(uowFactory, provider, state, topicService, cfg.Ai.EmbedTimeout, sysLogger)

	searchService := service.NewSearchService(uowFactory, ftsProvider, embeddingService, state, queryCache, service.SearchServiceConfig{
		FtsWeight:      cfg.Search.FtsWeight,
		SemanticWeight: cfg.Search.SemanticWeight,
	}, sysLogger)

	publisherService := service.NewPublisherService(pubSub, cfg.App.EmbedTopicName)

	noteService := service.NewNoteService(uowFactory, publisherService, topicService, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedTopicName,
		uowFactory,
		embeddingService,
		topicService,
		eventPublisher,
		state,
		sysLogger,
	)

	return &Container{
		NoteController:      controller.NewNoteController(noteService, topicService),
		SearchController:    controller.NewSearchController(searchService),
		TopicController:     controller.NewTopicController(topicService),
		EmbeddingController: controller.NewEmbeddingController(embeddingService),
		ConsumerService:     consumerService,
		TopicService:        topicService,
		Logger:              sysLogger,
		ProviderState:       state,
		NatsPublisher:       natsPub,
	}
}
