package reports

import (
	"context"
	"time"
)

// Store port (interface for report persistence)
type Store interface {
	Save(ctx context.Context, brandName, text string, meta SaveMeta) (string, error)
	List(ctx context.Context, filter ListFilter) ([]Summary, error)
	Read(ctx context.Context, fileName, brandFolder string) (*Report, error)
	Delete(ctx context.Context, fileName, brandFolder string) error
	Brands(ctx context.Context) ([]BrandFolder, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

// Archiver port (optional off-box mirror of saved reports)
type Archiver interface {
	Archive(ctx context.Context, brandFolder, fileName, content string) (string, error)
}

// HistoryEntry is one audit row per analysis run. The history table is an
// audit trail only; report lookups never consult it.
type HistoryEntry struct {
	RequestID    string    `json:"requestId"`
	BrandName    string    `json:"brandName"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	TotalTokens  int       `json:"totalTokens"`
	DurationMS   int64     `json:"durationMs"`
	ReportPath   string    `json:"reportPath"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// History port (optional audit persistence)
type History interface {
	Save(ctx context.Context, e *HistoryEntry) error
	Paginate(ctx context.Context, page, pageSize int) ([]*HistoryEntry, error)
}
