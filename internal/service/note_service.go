package service

import (
	"context"
	"encoding/json"
	"time"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is the outbound domain-event bus. Nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	topicService     ITopicService
	log              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	topicService ITopicService,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		topicService:     topicService,
		log:              log,
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, serverutils.NewPersistenceError("failed to create note", err)
	}

	if err := c.publishEmbedMessage(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load note", err)
	}
	if note == nil || note.IsDeleted {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	topics, err := c.loadNoteTopics(ctx, uow, note.Id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Topics:    topics,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: req.Id}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load note", err)
	}
	if note == nil || note.IsDeleted {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	now := time.Now()
	note.Title = req.Title
	note.Content = req.Content
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, serverutils.NewPersistenceError("failed to update note", err)
	}

	// Content changed; the consumer decides via content hash whether a new
	// embedding is actually needed.
	if err := c.publishEmbedMessage(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return serverutils.NewPersistenceError("failed to load note", err)
	}
	if note == nil || note.IsDeleted {
		return serverutils.NewNotFoundError("note not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewPersistenceError("failed to begin transaction", err)
	}

	now := time.Now()
	note.IsDeleted = true
	note.DeletedAt = &now
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		uow.Rollback()
		return serverutils.NewPersistenceError("failed to delete note", err)
	}

	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, id); err != nil {
		uow.Rollback()
		return serverutils.NewPersistenceError("failed to delete note embedding", err)
	}

	affected, err := uow.NoteTopicRepository().DeleteByNoteId(ctx, id)
	if err != nil {
		uow.Rollback()
		return serverutils.NewPersistenceError("failed to delete topic assignments", err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.NewPersistenceError("failed to commit note deletion", err)
	}

	if len(affected) > 0 {
		c.topicService.MarkDirty(affected...)
	}

	c.log.Info("note", "note deleted", map[string]interface{}{
		"note_id":         id.String(),
		"affected_topics": len(affected),
	})
	return nil
}

func (c *noteService) publishEmbedMessage(ctx context.Context, noteId uuid.UUID) error {
	payload := dto.PublishEmbedNoteMessage{NoteId: noteId}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *noteService) loadNoteTopics(ctx context.Context, uow unitofwork.UnitOfWork, noteId uuid.UUID) ([]dto.NoteTopicResponse, error) {
	assignments, err := uow.NoteTopicRepository().FindByNoteId(ctx, noteId)
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load topic assignments", err)
	}
	if len(assignments) == 0 {
		return []dto.NoteTopicResponse{}, nil
	}

	topics := make([]dto.NoteTopicResponse, 0, len(assignments))
	for _, a := range assignments {
		topic, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: a.TopicId})
		if err != nil {
			return nil, serverutils.NewPersistenceError("failed to load topic", err)
		}
		if topic == nil {
			continue
		}
		topics = append(topics, dto.NoteTopicResponse{
			TopicId:    a.TopicId,
			Name:       topic.Name,
			Confidence: a.Confidence,
		})
	}
	return topics, nil
}
