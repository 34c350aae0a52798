package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-paperwriter-be/internal/config"
	"ai-paperwriter-be/internal/controller"
	"ai-paperwriter-be/internal/pkg/logger"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/internal/service"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/embedding/jina"
	"ai-paperwriter-be/pkg/events"
	"ai-paperwriter-be/pkg/metadata"
	"ai-paperwriter-be/pkg/rag/contextbuilder"
	"ai-paperwriter-be/pkg/rag/ragcache"
	"ai-paperwriter-be/pkg/rag/retriever"
	"ai-paperwriter-be/pkg/rerank"

	pktNats "ai-paperwriter-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController      controller.IRagController
	CitationController controller.ICitationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 4. Infrastructure
	// NATS is optional; without it domain events stay in-process.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	reranker := rerank.NewClient(cfg.Keys.Reranker, cfg.Ai.RerankerBaseURL, cfg.Ai.RerankerModel)
	metadataClient := metadata.NewClient(cfg.Ai.MetadataBaseURL)

	// Caches: Redis when configured, otherwise bounded in-memory stores.
	defaultTTL := time.Duration(cfg.Rag.CacheTTLSeconds) * time.Second
	var contextCache, editorCache, embedCache ragcache.Store
	if cfg.App.RedisURL != "" {
		redisCache, err := ragcache.NewRedisStore(cfg.App.RedisURL, "rag")
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis, using in-memory caches: %v", err)
		} else {
			contextCache = redisCache
			editorCache = redisCache
			embedCache = redisCache
			log.Printf("[INFO] Using Redis cache")
		}
	}
	if contextCache == nil {
		contextCache = ragcache.NewMemoryStore(defaultTTL, cfg.Rag.CacheMaxEntries)
		editorCache = ragcache.NewMemoryStore(2*time.Minute, cfg.Rag.CacheMaxEntries)
		embedCache = ragcache.NewMemoryStore(15*time.Minute, cfg.Rag.CacheMaxEntries)
	}

	// 5. RAG Core
	ret := retriever.NewRetriever(uowFactory, embeddingProvider, reranker, sysLogger)
	builder := contextbuilder.NewBuilder(embeddingProvider, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestTopic, natsPub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.IngestTopic, uowFactory, embeddingProvider)

	generationService := service.NewGenerationContextService(
		uowFactory, ret, builder, contextCache, publisherService, sysLogger, cfg.Rag,
	)
	editorService := service.NewEditorContextService(
		uowFactory, embeddingProvider, editorCache, embedCache, sysLogger, cfg.Rag.MinScore,
	)
	citationService := service.NewCitationService(uowFactory, metadataClient, publisherService, sysLogger)

	// External ingestion pipelines announce updated sources on NATS;
	// each one gets reindexed through the local worker.
	if natsPub != nil {
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			err = natsSub.Subscribe("events."+events.SourceUpdatedType, "paperwriter-indexer",
				func(ctx context.Context, event events.Event) error {
					raw, _ := event.Payload()["source_id"].(string)
					sourceId, err := uuid.Parse(raw)
					if err != nil {
						sysLogger.Warn("bootstrap", "dropping source update with bad id", map[string]interface{}{
							"source_id": raw,
						})
						return nil
					}
					return publisherService.TriggerIngest(ctx, sourceId)
				})
			if err != nil {
				log.Printf("[WARN] Failed to subscribe to source updates: %v", err)
			}
		}
	}

	// 7. Controllers
	return &Container{
		RagController:      controller.NewRagController(generationService, editorService),
		CitationController: controller.NewCitationController(citationService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
