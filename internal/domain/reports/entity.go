package reports

import "time"

// LegacyBrand is the sentinel folder name for loose .txt files sitting
// directly in the report root (pre-brand-folder layout).
const LegacyBrand = "legacy"

// Summary is one report file as seen by list endpoints: metadata only,
// content is fetched separately.
type Summary struct {
	FileName    string    `json:"fileName"`
	BrandFolder string    `json:"brandFolder"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Report is a summary plus the full file content.
type Report struct {
	Summary
	Content string `json:"content"`
}

// SaveMeta is everything the store renders into the report header/footer
// besides the generated text itself.
type SaveMeta struct {
	RequestID    string
	BrandName    string
	WebsiteURL   string
	Email        string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Duration     time.Duration
	GeneratedAt  time.Time
	// Echo of the client-supplied specification, rendered verbatim.
	Competitors []string
	Topics      []string
	TestPrompts []string
	Personas    string
}

// BrandFolder aggregates one brand directory. Derived on demand by walking
// the report root; nothing is cached.
type BrandFolder struct {
	Name         string    `json:"name"`
	FileCount    int       `json:"fileCount"`
	TotalBytes   int64     `json:"totalBytes"`
	LastModified time.Time `json:"lastModified"`
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	BrandName string    // case-insensitive substring match on folder name
	FromDate  time.Time // inclusive lower bound on creation time
	ToDate    time.Time // inclusive upper bound
}

// Statistics is the aggregate view over the whole report tree, recomputed
// on every call.
type Statistics struct {
	TotalFiles   int                  `json:"totalFiles"`
	TotalBrands  int                  `json:"totalBrands"`
	TotalBytes   int64                `json:"totalBytes"`
	AverageBytes int64                `json:"averageBytes"`
	PerBrand     map[string]BrandStat `json:"perBrand"`
}

// BrandStat is the per-brand slice of Statistics.
type BrandStat struct {
	FileCount  int   `json:"fileCount"`
	TotalBytes int64 `json:"totalBytes"`
}
