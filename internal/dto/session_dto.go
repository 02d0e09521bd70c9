package dto

import (
	"time"

	"rd-assistant/internal/repository"
	"rd-assistant/pkg/analysis"
)

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	Result *analysis.Result `json:"result"`
}

type SessionStatusResponse struct {
	ProjectName       string    `json:"project_name"`
	RequirementsCount int       `json:"requirements_count"`
	ConstraintsCount  int       `json:"constraints_count"`
	RisksCount        int       `json:"risks_count"`
	CurrentFocus      string    `json:"current_focus"`
	CreatedAt         time.Time `json:"created_at"`
}

type VisualizationResponse struct {
	DiagramType string `json:"diagram_type"`
	Diagram     string `json:"diagram"`
}

type DocumentResponse struct {
	Markdown string `json:"markdown"`
}

type ListSessionsResponse struct {
	Sessions []repository.SessionInfo `json:"sessions"`
}

type LoadSessionRequest struct {
	FilePath string `json:"file_path" validate:"required"`
}
