package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/embedding"
	"knowledgebase-engine/pkg/events"
	"knowledgebase-engine/pkg/lexical"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	topicService     ITopicService
	eventPublisher   EventPublisher
	state            *embedding.ProviderState
	log              logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	topicService ITopicService,
	eventPublisher EventPublisher,
	state *embedding.ProviderState,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		topicService:     topicService,
		eventPublisher:   eventPublisher,
		state:            state,
		log:              log,
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages never become valid, do not retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: payload.NoteId})
	if err != nil {
		cs.log.Error("consumer", "failed to load note", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if note == nil || note.IsDeleted {
		msg.Ack() // note gone before we got to it
		return
	}

	plainContent := lexical.ParseContent(note.Content)
	text := fmt.Sprintf("Note Title: %s\n\n%s", note.Title, plainContent)

	sum := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(sum[:])

	existing, err := uow.NoteEmbeddingRepository().FindByNoteId(ctx, note.Id, cs.state.Model())
	if err != nil {
		cs.log.Error("consumer", "failed to load existing embedding", map[string]interface{}{
			"note_id": note.Id.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if existing != nil && existing.ContentHash == contentHash {
		msg.Ack() // content unchanged, current vector is still valid
		return
	}

	vector, err := cs.embeddingService.Generate(ctx, text, embedding.TaskRetrievalDocument)
	if err != nil {
		// Provider failures are non-fatal; the note stays pending and a
		// later create/update retriggers embedding.
		if errors.Is(err, embedding.ErrProviderUnavailable) {
			cs.log.Warn("consumer", "provider not ready, note stays pending", map[string]interface{}{
				"note_id": note.Id.String(),
			})
		} else {
			cs.log.Error("consumer", "embedding generation failed", map[string]interface{}{
				"note_id": note.Id.String(),
				"error":   err.Error(),
			})
		}
		msg.Ack()
		return
	}

	if err := cs.embeddingService.Store(ctx, note.Id, vector, contentHash); err != nil {
		cs.log.Error("consumer", "failed to store embedding", map[string]interface{}{
			"note_id": note.Id.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	if _, err := cs.topicService.ClassifyNote(ctx, note.UserId, note.Id); err != nil {
		// Classification failures do not invalidate the stored embedding.
		cs.log.Error("consumer", "classification failed", map[string]interface{}{
			"note_id": note.Id.String(),
			"error":   err.Error(),
		})
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NoteEmbedded(note.Id, cs.state.Model())); err != nil {
			cs.log.Warn("consumer", "failed to publish embedded event", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.log.Info("consumer", "note embedded", map[string]interface{}{
		"note_id": note.Id.String(),
		"model":   cs.state.Model(),
	})
	msg.Ack()
}
