package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spherical/question-agent/internal/domain"
)

var _ domain.Preserver = (*PendingStore)(nil)

// PendingEntry is a record whose publication failed.
type PendingEntry struct {
	Record  *domain.PipelineRecord `json:"record"`
	Cause   string                 `json:"cause"`
	SavedAt time.Time              `json:"saved_at"`
}

// PendingStore keeps pending records as <dir>/pending/<record-id>.json.
type PendingStore struct {
	dir   string
	clock Clock
}

// NewPendingStore creates a store rooted at the output directory.
func NewPendingStore(outputDir string, clock Clock) *PendingStore {
	if clock == nil {
		clock = time.Now
	}
	return &PendingStore{dir: filepath.Join(outputDir, "pending"), clock: clock}
}

// SavePending implements domain.Preserver.
func (s *PendingStore) SavePending(record *domain.PipelineRecord, cause error) (string, error) {
	if record == nil {
		return "", domain.ValidationError("no record to preserve", nil)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.IOError("create pending directory", err)
	}

	entry := PendingEntry{Record: record, SavedAt: s.clock().UTC()}
	if cause != nil {
		entry.Cause = cause.Error()
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", domain.IOError("encode pending record", err)
	}

	path := filepath.Join(s.dir, record.ID.String()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domain.IOError("write pending record", err)
	}
	return path, nil
}

// LoadPending reads a pending entry written by SavePending.
func LoadPending(path string) (*PendingEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError("read pending record", err)
	}

	var entry PendingEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, domain.ValidationError(fmt.Sprintf("invalid pending record %s", path), err)
	}
	if entry.Record == nil || entry.Record.StructuredQuestion == nil {
		return nil, domain.ValidationError(fmt.Sprintf("pending record %s has no structured question", path), nil)
	}
	return &entry, nil
}
