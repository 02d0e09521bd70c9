package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordChangeAndChangesSince(t *testing.T) {
	m := NewManager()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	m.SetClock(fixedClock(base))
	m.RecordChange(ActionAdd, "requirement", "req-1", map[string]any{"content": "login"}, "")

	m.SetClock(fixedClock(base.Add(2 * time.Hour)))
	m.RecordChange(ActionUpdate, "requirement", "req-1", map[string]any{
		"old_value": "login",
		"new_value": "login with SSO",
	}, "scope change")

	assert.Len(t, m.Records, 2)

	since := m.ChangesSince(base.Add(time.Hour))
	assert.Len(t, since, 1)
	assert.Equal(t, ActionUpdate, since[0].Action)
	assert.Equal(t, "scope change", since[0].Reason)
}

func TestGenerateMarkdownEmpty(t *testing.T) {
	m := NewManager()
	md := m.GenerateMarkdown()
	assert.Contains(t, md, "# Change History")
	assert.Contains(t, md, "No changes recorded.")
}

func TestGenerateMarkdownGroupsByDate(t *testing.T) {
	m := NewManager()

	day1 := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 14, 5, 0, 0, time.UTC)

	m.SetClock(fixedClock(day2))
	m.RecordChange(ActionReview, "requirement", "req-2", map[string]any{
		"review_score": 0.85,
		"suggestions":  []string{"add a numeric target"},
	}, "")

	m.SetClock(fixedClock(day1))
	m.RecordChange(ActionAdd, "requirement", "req-1", map[string]any{"content": "export as CSV"}, "")

	md := m.GenerateMarkdown()

	// Rendered oldest-first regardless of insertion order
	idx1 := strings.Index(md, "## 2025-03-10")
	idx2 := strings.Index(md, "## 2025-03-11")
	assert.True(t, idx1 >= 0 && idx2 >= 0)
	assert.Less(t, idx1, idx2)

	assert.Contains(t, md, "Quality score: 0.85")
	assert.Contains(t, md, "- add a numeric target")
	assert.Contains(t, md, "Subject: req-1")
}
