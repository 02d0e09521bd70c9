package sessionjson

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rd-assistant/internal/entity"
)

// SavedAtLayout is the timestamp format used inside session files and their
// filenames.
const SavedAtLayout = "20060102_150405"

type payload struct {
	ProjectName          string                       `json:"project_name"`
	ProjectDescription   string                       `json:"project_description"`
	Requirements         []requirementPayload         `json:"requirements"`
	Constraints          []entity.Constraint          `json:"constraints"`
	Risks                []entity.Risk                `json:"risks"`
	KeyDecisions         []entity.Decision            `json:"key_decisions"`
	CurrentFocus         string                       `json:"current_focus"`
	SavedAt              string                       `json:"saved_at"`
	ProjectVision        *entity.ProjectVision        `json:"project_vision,omitempty"`
	FeaturePriorities    []entity.FeaturePriority     `json:"feature_priorities,omitempty"`
	UnderstandingHistory []entity.UnderstandingStatus `json:"understanding_history,omitempty"`
}

// requirementPayload tolerates files written before requirements carried ids.
type requirementPayload struct {
	Id         string         `json:"id,omitempty"`
	Content    string         `json:"content"`
	Type       string         `json:"type"`
	Confidence float64        `json:"confidence"`
	Rationale  string         `json:"rationale"`
	Implicit   bool           `json:"implicit"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Encode serializes a memory snapshot for a session file.
func Encode(mem *entity.Memory, savedAt time.Time) ([]byte, error) {
	p := payload{
		ProjectName:          mem.ProjectName,
		ProjectDescription:   mem.ProjectDescription,
		Constraints:          mem.Constraints,
		Risks:                mem.Risks,
		KeyDecisions:         mem.KeyDecisions,
		CurrentFocus:         mem.CurrentFocus,
		SavedAt:              savedAt.Format(SavedAtLayout),
		ProjectVision:        mem.Vision,
		FeaturePriorities:    mem.FeaturePriorities,
		UnderstandingHistory: mem.UnderstandingHistory,
	}
	if p.Constraints == nil {
		p.Constraints = []entity.Constraint{}
	}
	if p.Risks == nil {
		p.Risks = []entity.Risk{}
	}
	if p.KeyDecisions == nil {
		p.KeyDecisions = []entity.Decision{}
	}

	p.Requirements = make([]requirementPayload, 0, len(mem.Requirements))
	for _, req := range mem.Requirements {
		p.Requirements = append(p.Requirements, requirementPayload{
			Id:         req.Id.String(),
			Content:    req.Content,
			Type:       req.Type,
			Confidence: req.Confidence,
			Rationale:  req.Rationale,
			Implicit:   req.Implicit,
			CreatedAt:  req.CreatedAt,
			Metadata:   req.Metadata,
		})
	}

	return json.MarshalIndent(p, "", "  ")
}

// Decode restores a memory from a session file. Requirements without a valid
// id get a fresh one.
func Decode(data []byte) (*entity.Memory, time.Time, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode session: %w", err)
	}

	mem := entity.NewMemory()
	mem.ProjectName = p.ProjectName
	mem.ProjectDescription = p.ProjectDescription
	mem.Constraints = p.Constraints
	mem.Risks = p.Risks
	mem.KeyDecisions = p.KeyDecisions
	mem.CurrentFocus = p.CurrentFocus
	mem.Vision = p.ProjectVision
	mem.FeaturePriorities = p.FeaturePriorities
	mem.UnderstandingHistory = p.UnderstandingHistory

	for _, rp := range p.Requirements {
		id, err := uuid.Parse(rp.Id)
		if err != nil {
			id = uuid.New()
		}
		mem.Requirements = append(mem.Requirements, entity.Requirement{
			Id:         id,
			Content:    rp.Content,
			Type:       rp.Type,
			Confidence: rp.Confidence,
			Rationale:  rp.Rationale,
			Implicit:   rp.Implicit,
			CreatedAt:  rp.CreatedAt,
			Metadata:   rp.Metadata,
		})
	}

	savedAt, err := time.ParseInLocation(SavedAtLayout, p.SavedAt, time.Local)
	if err != nil {
		savedAt = time.Time{}
	}
	return mem, savedAt, nil
}

// Summary extracts listing fields without building a full memory.
func Summary(data []byte) (projectName string, savedAt time.Time, reqs, constraints, risks int, err error) {
	var p payload
	if err = json.Unmarshal(data, &p); err != nil {
		return "", time.Time{}, 0, 0, 0, fmt.Errorf("decode session: %w", err)
	}
	savedAt, parseErr := time.ParseInLocation(SavedAtLayout, p.SavedAt, time.Local)
	if parseErr != nil {
		savedAt = time.Time{}
	}
	return p.ProjectName, savedAt, len(p.Requirements), len(p.Constraints), len(p.Risks), nil
}
