package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rd-assistant/internal/dto"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/internal/repository"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sessions  repository.ISessionRepository
	storage   repository.ISessionStorage
	archive   repository.ISessionArchive
	logger    logger.ILogger
}

// NewConsumerService builds the autosave worker. The archive is optional;
// without it snapshots only go to session files.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessions repository.ISessionRepository,
	storage repository.ISessionStorage,
	archiveRepo repository.ISessionArchive,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		sessions:  sessions,
		storage:   storage,
		archive:   archiveRepo,
		logger:    log,
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
	var payload dto.AutosaveSessionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("autosave", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	session, found := cs.sessions.Get(payload.SessionId)
	if !found {
		// Session expired before the autosave ran. Nothing to snapshot.
		cs.logger.Warn("autosave", "session no longer live", map[string]interface{}{"session_id": payload.SessionId})
		msg.Ack()
		return
	}

	path, err := cs.storage.Save(session.Memory)
	if err != nil {
		cs.logger.Error("autosave", "failed to write session file", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	if cs.archive != nil {
		if err := cs.archive.Upsert(ctx, payload.SessionId, session.Memory); err != nil {
			cs.logger.Error("autosave", "failed to archive session", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
			msg.Nack()
			return
		}
	}

	cs.logger.Info("autosave", "session snapshot saved", map[string]interface{}{
		"session_id": payload.SessionId,
		"file_path":  path,
	})
	msg.Ack()
}
