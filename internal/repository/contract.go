package repository

import (
	"context"
	"time"

	"rd-assistant/internal/entity"
)

// ISessionRepository holds live sessions keyed by id. Entries expire when a
// session goes idle.
type ISessionRepository interface {
	Save(session *entity.Session)
	Get(sessionId string) (*entity.Session, bool)
	Delete(sessionId string)
}

// SessionInfo summarizes a saved session file without loading the full
// memory.
type SessionInfo struct {
	FilePath          string    `json:"file_path"`
	ProjectName       string    `json:"project_name"`
	SavedAt           time.Time `json:"saved_at"`
	RequirementsCount int       `json:"requirements_count"`
	ConstraintsCount  int       `json:"constraints_count"`
	RisksCount        int       `json:"risks_count"`
}

// ISessionStorage persists project memories as session files.
type ISessionStorage interface {
	Save(mem *entity.Memory) (string, error)
	Load(path string) (*entity.Memory, error)
	List() ([]SessionInfo, error)
}

// ArchivedSession is one database snapshot of a session. Payload holds the
// same JSON document the file storage writes.
type ArchivedSession struct {
	SessionId   string
	ProjectName string
	Payload     []byte
	SavedAt     time.Time
}

// ISessionArchive is the optional durable store behind the autosave worker.
type ISessionArchive interface {
	Upsert(ctx context.Context, sessionId string, mem *entity.Memory) error
	Get(ctx context.Context, sessionId string) (*entity.Memory, error)
	List(ctx context.Context, limit int) ([]ArchivedSession, error)
}
