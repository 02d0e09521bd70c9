package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"rd-assistant/internal/dto"
	"rd-assistant/internal/entity"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/internal/repository"
	"rd-assistant/internal/repository/sessionjson"
	"rd-assistant/pkg/document"
	"rd-assistant/pkg/visualizer"
)

// archiveListLimit caps how many database snapshots a listing includes.
const archiveListLimit = 50

var ErrSessionNotFound = errors.New("session not found")

type ISessionService interface {
	Create(ctx context.Context) (*dto.CreateSessionResponse, error)
	SendMessage(ctx context.Context, sessionId, message string) (*dto.SendMessageResponse, error)
	Status(ctx context.Context, sessionId string) (*dto.SessionStatusResponse, error)
	Visualization(ctx context.Context, sessionId, diagramType string) (*dto.VisualizationResponse, error)
	Document(ctx context.Context, sessionId string) (*dto.DocumentResponse, error)
	ListSaved(ctx context.Context) (*dto.ListSessionsResponse, error)
	LoadSaved(ctx context.Context, filePath string) (*dto.CreateSessionResponse, error)
}

type sessionService struct {
	sessions   repository.ISessionRepository
	storage    repository.ISessionStorage
	archive    repository.ISessionArchive
	analyzer   IAnalyzerService
	publisher  IPublisherService
	generator  *document.Generator
	visualizer *visualizer.Visualizer
	logger     logger.ILogger
}

// NewSessionService wires the session operations. The archive is optional;
// when present, listings include database snapshots and restores fall back
// to them.
func NewSessionService(
	sessions repository.ISessionRepository,
	storage repository.ISessionStorage,
	archiveStore repository.ISessionArchive,
	analyzer IAnalyzerService,
	publisher IPublisherService,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions:   sessions,
		storage:    storage,
		archive:    archiveStore,
		analyzer:   analyzer,
		publisher:  publisher,
		generator:  document.NewGenerator(),
		visualizer: visualizer.New(),
		logger:     log,
	}
}

func (s *sessionService) Create(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := &entity.Session{
		Id:        uuid.NewString(),
		Memory:    entity.NewMemory(),
		CreatedAt: time.Now(),
	}
	s.sessions.Save(session)
	s.requestAutosave(session.Id)

	s.logger.Info("session", "session created", map[string]interface{}{"session_id": session.Id})
	return &dto.CreateSessionResponse{SessionId: session.Id}, nil
}

func (s *sessionService) SendMessage(ctx context.Context, sessionId, message string) (*dto.SendMessageResponse, error) {
	session, found := s.sessions.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}

	result := s.analyzer.ProcessMessage(ctx, session.Memory, message)

	s.sessions.Save(session)
	if !result.IsError() {
		s.requestAutosave(session.Id)
	}

	return &dto.SendMessageResponse{Result: result}, nil
}

func (s *sessionService) Status(ctx context.Context, sessionId string) (*dto.SessionStatusResponse, error) {
	session, found := s.sessions.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}

	mem := session.Memory
	return &dto.SessionStatusResponse{
		ProjectName:       mem.ProjectName,
		RequirementsCount: len(mem.Requirements),
		ConstraintsCount:  len(mem.Constraints),
		RisksCount:        len(mem.Risks),
		CurrentFocus:      mem.CurrentFocus,
		CreatedAt:         session.CreatedAt,
	}, nil
}

func (s *sessionService) Visualization(ctx context.Context, sessionId, diagramType string) (*dto.VisualizationResponse, error) {
	session, found := s.sessions.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}

	var diagram string
	switch diagramType {
	case "flowchart":
		diagram = s.visualizer.GenerateFlowchart(session.Memory)
	case "priority":
		diagram = s.visualizer.GeneratePriorityGraph(session.Memory)
	default:
		diagramType = "mindmap"
		diagram = s.visualizer.GenerateMindmap(session.Memory)
	}

	return &dto.VisualizationResponse{
		DiagramType: diagramType,
		Diagram:     diagram,
	}, nil
}

func (s *sessionService) Document(ctx context.Context, sessionId string) (*dto.DocumentResponse, error) {
	session, found := s.sessions.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}
	return &dto.DocumentResponse{
		Markdown: s.generator.GenerateMarkdown(session.Memory),
	}, nil
}

// ListSaved lists session files plus, when an archive is configured, its
// database snapshots. Archive entries carry the session id in FilePath so
// LoadSaved can restore them.
func (s *sessionService) ListSaved(ctx context.Context) (*dto.ListSessionsResponse, error) {
	infos, err := s.storage.List()
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		records, archiveErr := s.archive.List(ctx, archiveListLimit)
		if archiveErr != nil {
			s.logger.Warn("session", "archive listing failed", map[string]interface{}{"error": archiveErr.Error()})
		}
		for _, record := range records {
			name, savedAt, reqs, constraints, risks, summaryErr := sessionjson.Summary(record.Payload)
			if summaryErr != nil {
				continue
			}
			infos = append(infos, repository.SessionInfo{
				FilePath:          record.SessionId,
				ProjectName:       name,
				SavedAt:           savedAt,
				RequirementsCount: reqs,
				ConstraintsCount:  constraints,
				RisksCount:        risks,
			})
		}
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].SavedAt.After(infos[j].SavedAt)
		})
	}

	return &dto.ListSessionsResponse{Sessions: infos}, nil
}

// LoadSaved restores a saved session into a fresh live session. The reference
// is a session filename, or a session id when the snapshot lives in the
// archive.
func (s *sessionService) LoadSaved(ctx context.Context, filePath string) (*dto.CreateSessionResponse, error) {
	mem, err := s.storage.Load(filePath)
	if err != nil && s.archive != nil {
		if archived, archiveErr := s.archive.Get(ctx, filePath); archiveErr == nil {
			mem, err = archived, nil
		}
	}
	if err != nil {
		return nil, err
	}

	session := &entity.Session{
		Id:        uuid.NewString(),
		Memory:    mem,
		CreatedAt: time.Now(),
	}
	s.sessions.Save(session)

	s.logger.Info("session", "session restored from file", map[string]interface{}{
		"session_id": session.Id,
		"file_path":  filePath,
	})
	return &dto.CreateSessionResponse{SessionId: session.Id}, nil
}

func (s *sessionService) requestAutosave(sessionId string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionSaved(sessionId); err != nil {
		s.logger.Warn("session", "autosave publish failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}
