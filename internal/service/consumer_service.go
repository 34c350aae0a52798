package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-paperwriter-be/internal/dto"
	"ai-paperwriter-be/internal/entity"
	"ai-paperwriter-be/internal/repository/specification"
	"ai-paperwriter-be/internal/repository/unitofwork"
	"ai-paperwriter-be/pkg/embedding"
	"ai-paperwriter-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage (re)indexes one source. Full-text ingestion happens
// upstream; this path works from what the source row itself carries, so
// the chunks it writes are tagged abstract or title_only evidence.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestSourceMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing source %s", payload.SourceId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	source, err := uow.SourceRepository().FindOne(ctx, specification.ByID{ID: payload.SourceId})
	if err != nil {
		log.Printf("[ERROR] Failed to get source %s: %v", payload.SourceId, err)
		msg.Nack()
		return
	}
	if source == nil {
		log.Printf("[ERROR] Source not found: %s", payload.SourceId)
		msg.Ack() // Source deleted? Ack.
		return
	}

	strength := entity.EvidenceAbstract
	content := fmt.Sprintf("%s\n\n%s", source.Title, source.Abstract)
	if source.Abstract == "" {
		strength = entity.EvidenceTitleOnly
		content = source.Title
	}

	// 1500 chars per chunk with 200 overlap; abstracts usually fit in one.
	pieces := utils.SplitText(content, 1500, 200)
	log.Printf("[INFO] Source %s split into %d chunks", payload.SourceId, len(pieces))

	var newChunks []*entity.Chunk
	var embeddings [][]float32

	for i, piece := range pieces {
		res, err := cs.embeddingProvider.Generate(piece, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of source %s: %v", i, payload.SourceId, err)
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.Chunk{
			Id:               uuid.New(),
			SourceId:         source.Id,
			Content:          piece,
			ChunkIndex:       i,
			EvidenceStrength: strength,
			CreatedAt:        time.Now(),
		})
		embeddings = append(embeddings, res.Embedding.Values)
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.SourceChunkRepository().DeleteBySourceId(ctx, source.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.SourceChunkRepository().CreateBulk(ctx, newChunks, embeddings); err != nil {
			log.Printf("[ERROR] Failed to create chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Source indexed: %d chunks for %s", len(newChunks), payload.SourceId)
	msg.Ack()
}
