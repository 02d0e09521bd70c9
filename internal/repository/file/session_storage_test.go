package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/entity"
)

func seedMemory() *entity.Memory {
	mem := entity.NewMemory()
	mem.SetProjectInfo("Fleet Tracker", "Vehicle telemetry dashboard")
	mem.AddRequirement(entity.Requirement{
		Content:    "Show live vehicle positions on a map",
		Type:       entity.RequirementTypeFunctional,
		Confidence: 0.85,
		Rationale:  "Dispatchers need realtime visibility",
		Implicit:   true,
		Metadata:   map[string]any{"priority": "must_have"},
	})
	mem.AddConstraint(entity.Constraint{
		Content: "Must run on the existing Kubernetes cluster",
		Type:    "technical",
		Impact:  "Limits resource usage per pod",
	})
	mem.AddRisk(entity.Risk{
		Description: "GPS data may be delayed in tunnels",
		Severity:    "medium",
		Mitigation:  "Interpolate positions",
	})
	mem.AddDecision("Use the existing telemetry ingestion system")
	mem.UpdateFocus("realtime tracking")
	mem.UpdateVision(&entity.ProjectVision{
		Goals:       []string{"Reduce dispatch response time"},
		Constraints: []string{"Launch before the winter season"},
	})
	return mem
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	storage := NewSessionStorage(dir)
	storage.SetClock(func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	})

	mem := seedMemory()
	path, err := storage.Save(mem)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fleet_tracker_20250314_092653.json"), path)

	loaded, err := storage.Load(path)
	require.NoError(t, err)

	assert.Equal(t, mem.ProjectName, loaded.ProjectName)
	assert.Equal(t, mem.ProjectDescription, loaded.ProjectDescription)
	assert.Equal(t, mem.CurrentFocus, loaded.CurrentFocus)

	require.Len(t, loaded.Requirements, 1)
	got := loaded.Requirements[0]
	want := mem.Requirements[0]
	assert.Equal(t, want.Id, got.Id)
	assert.Equal(t, want.Content, got.Content)
	assert.Equal(t, want.Confidence, got.Confidence)
	assert.Equal(t, want.Implicit, got.Implicit)
	assert.Equal(t, "must_have", got.Metadata["priority"])

	// vision constraints were merged on save, so both survive the round trip
	require.Len(t, loaded.Constraints, 2)
	assert.Equal(t, mem.Constraints[0].Content, loaded.Constraints[0].Content)
	require.Len(t, loaded.Risks, 1)
	require.Len(t, loaded.KeyDecisions, 1)
	require.NotNil(t, loaded.Vision)
	assert.Equal(t, mem.Vision.Goals, loaded.Vision.Goals)
}

func TestSaveUnnamedProject(t *testing.T) {
	storage := NewSessionStorage(t.TempDir())

	path, err := storage.Save(entity.NewMemory())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "unnamed_project_")
}

func TestLoadAssignsIdsToLegacyRequirements(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
		"project_name": "Old Project",
		"requirements": [{"content": "Keep audit logs", "type": "technical", "confidence": 1.0}],
		"constraints": [], "risks": [], "key_decisions": [],
		"saved_at": "20240101_120000"
	}`
	path := filepath.Join(dir, "old_project_20240101_120000.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	loaded, err := NewSessionStorage(dir).Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Requirements, 1)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", loaded.Requirements[0].Id.String())
}

func TestLoadAcceptsBareFilename(t *testing.T) {
	dir := t.TempDir()
	storage := NewSessionStorage(dir)

	path, err := storage.Save(seedMemory())
	require.NoError(t, err)

	loaded, err := storage.Load(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, "Fleet Tracker", loaded.ProjectName)
}

func TestLoadRejectsPathsOutsideSessionDir(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{"project_name": "x"}`), 0644))

	storage := NewSessionStorage(dir)

	_, err := storage.Load(outside)
	assert.Error(t, err)

	_, err = storage.Load(filepath.Join("..", "secrets.json"))
	assert.Error(t, err)

	_, err = storage.Load(filepath.Join(dir, "..", "secrets.json"))
	assert.Error(t, err)
}

func TestListSortsNewestFirstAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	storage := NewSessionStorage(dir)

	older := seedMemory()
	storage.SetClock(func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local) })
	_, err := storage.Save(older)
	require.NoError(t, err)

	newer := entity.NewMemory()
	newer.SetProjectInfo("Second Project", "")
	storage.SetClock(func() time.Time { return time.Date(2025, 2, 1, 10, 0, 0, 0, time.Local) })
	_, err = storage.Save(newer)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	infos, err := storage.List()
	require.NoError(t, err)

	require.Len(t, infos, 2)
	assert.Equal(t, "Second Project", infos[0].ProjectName)
	assert.Equal(t, "Fleet Tracker", infos[1].ProjectName)
	assert.Equal(t, 1, infos[1].RequirementsCount)
	assert.Equal(t, 2, infos[1].ConstraintsCount)
	assert.Equal(t, 1, infos[1].RisksCount)
}
