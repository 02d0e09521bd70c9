package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rd-assistant/internal/repository"
	"rd-assistant/internal/repository/sessionjson"

	"rd-assistant/internal/entity"
)

// SessionStorage persists project memories as JSON files in a directory, one
// timestamped file per save.
type SessionStorage struct {
	dir string
	now func() time.Time
}

func NewSessionStorage(dir string) *SessionStorage {
	return &SessionStorage{
		dir: dir,
		now: time.Now,
	}
}

// SetClock overrides the timestamp source used in filenames.
func (s *SessionStorage) SetClock(now func() time.Time) {
	s.now = now
}

// Save writes the memory to a new session file and returns its path.
func (s *SessionStorage) Save(mem *entity.Memory) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	savedAt := s.now()
	data, err := sessionjson.Encode(mem, savedAt)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", safeName(mem.ProjectName), savedAt.Format(sessionjson.SavedAtLayout))
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}
	return path, nil
}

// Load restores a memory from a session file. The path must be a bare
// filename or stay inside the session directory; callers can hand it
// untrusted input.
func (s *SessionStorage) Load(path string) (*entity.Memory, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	mem, _, err := sessionjson.Decode(data)
	if err != nil {
		return nil, err
	}
	return mem, nil
}

func (s *SessionStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == filepath.Base(clean) {
		return filepath.Join(s.dir, clean), nil
	}
	rel, err := filepath.Rel(s.dir, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("session file outside %s: %s", s.dir, path)
	}
	return clean, nil
}

// List summarizes every readable session file, newest first. Malformed files
// are skipped rather than failing the listing.
func (s *SessionStorage) List() ([]repository.SessionInfo, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan session dir: %w", err)
	}

	var infos []repository.SessionInfo
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		name, savedAt, reqs, constraints, risks, err := sessionjson.Summary(data)
		if err != nil {
			continue
		}
		infos = append(infos, repository.SessionInfo{
			FilePath:          path,
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
	return infos, nil
}

func safeName(projectName string) string {
	name := strings.TrimSpace(projectName)
	if name == "" {
		return "unnamed_project"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
