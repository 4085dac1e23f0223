package history

import (
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = 1

type Run struct {
	ID                 string        `json:"id"`
	SchemaVersion      int           `json:"schema_version"`
	StartedAt          time.Time     `json:"started_at"`
	Root               string        `json:"root"`
	DryRun             bool          `json:"dry_run"`
	FilesProcessed     int           `json:"files_processed"`
	FilesChanged       int           `json:"files_changed"`
	FilesFailed        int           `json:"files_failed"`
	WildcardsSeen      int           `json:"wildcards_seen"`
	WildcardsReplaced  int           `json:"wildcards_replaced"`
	WildcardsRemoved   int           `json:"wildcards_removed"`
	WildcardsKept      int           `json:"wildcards_kept"`
	ExportListsWritten int           `json:"export_lists_written"`
	DiagnosticCount    int           `json:"diagnostic_count"`
	Duration           time.Duration `json:"duration"`
}

// NewRun starts a run record for the given project root. The ID is assigned
// up front so watch mode can upsert the same record after each pass.
func NewRun(root string, dryRun bool) Run {
	return Run{
		ID:            uuid.NewString(),
		SchemaVersion: SchemaVersion,
		StartedAt:     time.Now().UTC(),
		Root:          root,
		DryRun:        dryRun,
	}
}
