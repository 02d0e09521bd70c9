package history

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Actions recorded against the project memory.
const (
	ActionAdd      = "add"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionReview   = "review"
	ActionOrganize = "organize"
)

type ChangeRecord struct {
	Timestamp  time.Time      `json:"timestamp"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetId   string         `json:"target_id"`
	Details    map[string]any `json:"details"`
	Reason     string         `json:"reason,omitempty"`
}

// Manager keeps an append-only log of changes made to the project memory.
type Manager struct {
	Records   []ChangeRecord `json:"records"`
	StartTime time.Time      `json:"start_time"`

	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		StartTime: time.Now(),
		now:       time.Now,
	}
}

// SetClock overrides the record timestamp source.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Manager) RecordChange(action, targetType, targetId string, details map[string]any, reason string) {
	clock := m.now
	if clock == nil {
		clock = time.Now
	}
	m.Records = append(m.Records, ChangeRecord{
		Timestamp:  clock(),
		Action:     action,
		TargetType: targetType,
		TargetId:   targetId,
		Details:    details,
		Reason:     reason,
	})
}

func (m *Manager) ChangesSince(ts time.Time) []ChangeRecord {
	var out []ChangeRecord
	for _, r := range m.Records {
		if !r.Timestamp.Before(ts) {
			out = append(out, r)
		}
	}
	return out
}

// GenerateMarkdown renders the change log grouped by day, oldest first.
func (m *Manager) GenerateMarkdown() string {
	if len(m.Records) == 0 {
		return "# Change History\n\nNo changes recorded."
	}

	sorted := make([]ChangeRecord, len(m.Records))
	copy(sorted, m.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	sections := []string{"# Change History"}

	var currentDate string
	for _, change := range sorted {
		date := change.Timestamp.Format("2006-01-02")
		if date != currentDate {
			currentDate = date
			sections = append(sections, fmt.Sprintf("\n## %s", date))
		}

		sections = append(sections, fmt.Sprintf("\n### %s %s",
			change.Timestamp.Format("15:04:05"), formatAction(change.Action)))
		sections = append(sections, fmt.Sprintf("Target: %s", change.TargetType))

		if change.TargetId != "" {
			sections = append(sections, fmt.Sprintf("Subject: %s", change.TargetId))
		}

		if len(change.Details) > 0 {
			sections = append(sections, "\nDetails:")
			sections = append(sections, formatDetails(change.Details)...)
		}

		if change.Reason != "" {
			sections = append(sections, fmt.Sprintf("\nReason: %s", change.Reason))
		}
	}

	return strings.Join(sections, "\n")
}

func formatAction(action string) string {
	switch action {
	case ActionAdd:
		return "Added"
	case ActionUpdate:
		return "Updated"
	case ActionDelete:
		return "Deleted"
	case ActionReview:
		return "Reviewed"
	case ActionOrganize:
		return "Reorganized"
	}
	return action
}

func formatDetails(details map[string]any) []string {
	var lines []string

	if v, ok := details["type"]; ok {
		lines = append(lines, fmt.Sprintf("- Type: %v", v))
	}
	if v, ok := details["content"]; ok {
		lines = append(lines, fmt.Sprintf("- Content: %v", v))
	}
	if v, ok := details["rationale"]; ok {
		lines = append(lines, fmt.Sprintf("- Rationale: %v", v))
	}

	oldValue, hasOld := details["old_value"]
	newValue, hasNew := details["new_value"]
	if hasOld && hasNew {
		lines = append(lines, fmt.Sprintf("- Before: %v", oldValue))
		lines = append(lines, fmt.Sprintf("- After: %v", newValue))
	}

	if v, ok := details["review_score"]; ok {
		if score, isFloat := v.(float64); isFloat {
			lines = append(lines, fmt.Sprintf("- Quality score: %.2f", score))
		} else {
			lines = append(lines, fmt.Sprintf("- Quality score: %v", v))
		}
	}
	if v, ok := details["suggestions"]; ok {
		lines = append(lines, "- Suggestions:")
		if suggestions, isSlice := v.([]string); isSlice {
			for _, s := range suggestions {
				lines = append(lines, fmt.Sprintf("  - %s", s))
			}
		} else if suggestions, isAnySlice := v.([]any); isAnySlice {
			for _, s := range suggestions {
				lines = append(lines, fmt.Sprintf("  - %v", s))
			}
		}
	}

	return lines
}
