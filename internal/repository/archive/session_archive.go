package archive

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rd-assistant/internal/entity"
	"rd-assistant/internal/repository"
	"rd-assistant/internal/repository/sessionjson"
)

// SessionArchive is the durable copy of a session snapshot. The payload is
// the same JSON the file storage writes, so either store can restore it.
type SessionArchive struct {
	SessionId   string         `gorm:"primaryKey;column:session_id"`
	ProjectName string         `gorm:"column:project_name"`
	Payload     datatypes.JSON `gorm:"column:payload"`
	SavedAt     time.Time      `gorm:"column:saved_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (SessionArchive) TableName() string {
	return "session_archives"
}

type Repository struct {
	db *gorm.DB
}

var _ repository.ISessionArchive = &Repository{}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&SessionArchive{}); err != nil {
		return nil, fmt.Errorf("migrate session archive: %w", err)
	}
	return &Repository{db: db}, nil
}

// Upsert writes the latest snapshot for a session, replacing any previous
// one.
func (r *Repository) Upsert(ctx context.Context, sessionId string, mem *entity.Memory) error {
	savedAt := time.Now()
	payload, err := sessionjson.Encode(mem, savedAt)
	if err != nil {
		return fmt.Errorf("encode archive payload: %w", err)
	}

	record := SessionArchive{
		SessionId:   sessionId,
		ProjectName: mem.ProjectName,
		Payload:     datatypes.JSON(payload),
		SavedAt:     savedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"project_name", "payload", "saved_at", "updated_at"}),
		}).
		Create(&record).Error
}

// Get restores the archived memory for a session.
func (r *Repository) Get(ctx context.Context, sessionId string) (*entity.Memory, error) {
	var record SessionArchive
	if err := r.db.WithContext(ctx).First(&record, "session_id = ?", sessionId).Error; err != nil {
		return nil, err
	}
	mem, _, err := sessionjson.Decode(record.Payload)
	return mem, err
}

// List returns archived snapshots newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]repository.ArchivedSession, error) {
	var records []SessionArchive
	err := r.db.WithContext(ctx).
		Order("saved_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]repository.ArchivedSession, 0, len(records))
	for _, record := range records {
		out = append(out, repository.ArchivedSession{
			SessionId:   record.SessionId,
			ProjectName: record.ProjectName,
			Payload:     []byte(record.Payload),
			SavedAt:     record.SavedAt,
		})
	}
	return out, nil
}
