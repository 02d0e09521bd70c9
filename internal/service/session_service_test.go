package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/entity"
	"rd-assistant/internal/repository"
	"rd-assistant/internal/repository/file"
	"rd-assistant/internal/repository/memory"
	"rd-assistant/internal/repository/sessionjson"
	"rd-assistant/pkg/llm/llmtest"
)

// stubArchive keeps snapshots in memory with the same payload format the
// database archive uses.
type stubArchive struct {
	snapshots map[string]repository.ArchivedSession
}

func newStubArchive() *stubArchive {
	return &stubArchive{snapshots: map[string]repository.ArchivedSession{}}
}

func (a *stubArchive) Upsert(ctx context.Context, sessionId string, mem *entity.Memory) error {
	savedAt := time.Now()
	payload, err := sessionjson.Encode(mem, savedAt)
	if err != nil {
		return err
	}
	a.snapshots[sessionId] = repository.ArchivedSession{
		SessionId:   sessionId,
		ProjectName: mem.ProjectName,
		Payload:     payload,
		SavedAt:     savedAt,
	}
	return nil
}

func (a *stubArchive) Get(ctx context.Context, sessionId string) (*entity.Memory, error) {
	snapshot, found := a.snapshots[sessionId]
	if !found {
		return nil, ErrSessionNotFound
	}
	mem, _, err := sessionjson.Decode(snapshot.Payload)
	return mem, err
}

func (a *stubArchive) List(ctx context.Context, limit int) ([]repository.ArchivedSession, error) {
	var records []repository.ArchivedSession
	for _, snapshot := range a.snapshots {
		records = append(records, snapshot)
	}
	return records, nil
}

func newTestSessionService(t *testing.T, responses ...string) ISessionService {
	t.Helper()
	stub := llmtest.NewStubProvider(responses...)
	analyzer := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)
	return NewSessionService(
		memory.NewSessionRepository(),
		file.NewSessionStorage(t.TempDir()),
		nil,
		analyzer,
		nil,
		nopLogger{},
	)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestSessionService(t, analysisResponse)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.SessionId)

	msg, err := svc.SendMessage(ctx, created.SessionId, "We track our fleet live")
	require.NoError(t, err)
	require.False(t, msg.Result.IsError())

	status, err := svc.Status(ctx, created.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 1, status.RequirementsCount)
	assert.Equal(t, 1, status.ConstraintsCount)
	assert.Equal(t, 1, status.RisksCount)
	assert.Equal(t, "map display details", status.CurrentFocus)

	doc, err := svc.Document(ctx, created.SessionId)
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "# Requirements Specification")
	assert.Contains(t, doc.Markdown, "Show live vehicle positions on a map")
}

func TestSessionNotFound(t *testing.T) {
	svc := newTestSessionService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Status(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Visualization(ctx, "missing", "mindmap")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Document(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVisualizationSelectsDiagramType(t *testing.T) {
	svc := newTestSessionService(t, analysisResponse)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, created.SessionId, "We track our fleet live")
	require.NoError(t, err)

	flow, err := svc.Visualization(ctx, created.SessionId, "flowchart")
	require.NoError(t, err)
	assert.Equal(t, "flowchart", flow.DiagramType)
	assert.Contains(t, flow.Diagram, "graph TD")

	// unknown types fall back to the mindmap
	mind, err := svc.Visualization(ctx, created.SessionId, "something-else")
	require.NoError(t, err)
	assert.Equal(t, "mindmap", mind.DiagramType)
	assert.Contains(t, mind.Diagram, "mindmap")
}

func TestListAndLoadSaved(t *testing.T) {
	stub := llmtest.NewStubProvider(analysisResponse)
	analyzer := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)
	repo := memory.NewSessionRepository()
	storage := file.NewSessionStorage(t.TempDir())
	svc := NewSessionService(repo, storage, nil, analyzer, nil, nopLogger{})
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, created.SessionId, "We track our fleet live")
	require.NoError(t, err)

	session, found := repo.Get(created.SessionId)
	require.True(t, found)
	path, err := storage.Save(session.Memory)
	require.NoError(t, err)

	listed, err := svc.ListSaved(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, 1, listed.Sessions[0].RequirementsCount)

	restored, err := svc.LoadSaved(ctx, path)
	require.NoError(t, err)
	assert.NotEqual(t, created.SessionId, restored.SessionId)

	status, err := svc.Status(ctx, restored.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 1, status.RequirementsCount)
}

func TestListAndLoadFromArchive(t *testing.T) {
	stub := llmtest.NewStubProvider()
	analyzer := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)
	archiveStore := newStubArchive()
	svc := NewSessionService(
		memory.NewSessionRepository(),
		file.NewSessionStorage(t.TempDir()),
		archiveStore,
		analyzer,
		nil,
		nopLogger{},
	)
	ctx := context.Background()

	mem := entity.NewMemory()
	mem.SetProjectInfo("Archived Project", "Recovered from the database")
	mem.AddRequirement(entity.Requirement{
		Content: "Show live vehicle positions on a map",
		Type:    entity.RequirementTypeFunctional,
	})
	require.NoError(t, archiveStore.Upsert(ctx, "session-abc", mem))

	listed, err := svc.ListSaved(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, "session-abc", listed.Sessions[0].FilePath)
	assert.Equal(t, "Archived Project", listed.Sessions[0].ProjectName)
	assert.Equal(t, 1, listed.Sessions[0].RequirementsCount)

	// no session file matches, so the restore comes from the archive
	restored, err := svc.LoadSaved(ctx, "session-abc")
	require.NoError(t, err)

	status, err := svc.Status(ctx, restored.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "Archived Project", status.ProjectName)
	assert.Equal(t, 1, status.RequirementsCount)
}
