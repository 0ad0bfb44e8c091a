package analysis

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens/internal/application"
	domain "github.com/brandlens/brandlens/internal/domain/analysis"
	"github.com/brandlens/brandlens/internal/domain/reports"
	"github.com/brandlens/brandlens/internal/infra/ai/prompt"
	"github.com/brandlens/brandlens/internal/logging"
)

// Service sequences prompt rendering, upstream generation and report
// persistence for one request. Archiver and History are optional; nil
// disables them.
type Service struct {
	Generator domain.Generator
	Store     reports.Store
	Archiver  reports.Archiver
	History   reports.History
	Clock     application.Clock
	Log       *logging.Logger
}

// AnalyzeResult is the summary shape returned to the HTTP caller.
type AnalyzeResult struct {
	RequestID  string            `json:"requestId"`
	BrandName  string            `json:"brandName"`
	FilePath   string            `json:"filePath"`
	FileName   string            `json:"fileName"`
	Model      string            `json:"model"`
	Usage      domain.TokenUsage `json:"usage"`
	DurationMS int64             `json:"durationMs"`
	Depth      string            `json:"depth"`
}

// Analyze runs the full flow with every optional field of the request
// feeding the prompt.
func (s *Service) Analyze(ctx context.Context, req *domain.Request) (*AnalyzeResult, error) {
	return s.run(ctx, req, prompt.FromRequest(req))
}

// AnalyzeLegacy runs the pre-comprehensive flow: only brand, website and
// contact are used, everything else is synthesized by the model.
func (s *Service) AnalyzeLegacy(ctx context.Context, req *domain.Request) (*AnalyzeResult, error) {
	spec := prompt.Spec{
		BrandName:  req.BrandName,
		WebsiteURL: req.WebsiteURL,
		Email:      req.Email,
	}
	return s.run(ctx, req, spec)
}

func (s *Service) run(ctx context.Context, req *domain.Request, spec prompt.Spec) (*AnalyzeResult, error) {
	requestID := uuid.New().String()
	startedAt := s.Clock.Now()

	res, err := s.Generator.Generate(ctx, prompt.Render(spec))
	if err != nil {
		// No file is written on upstream failure; the error propagates as-is.
		s.recordHistory(ctx, requestID, req.BrandName, nil, "", "failed")
		return nil, err
	}

	meta := reports.SaveMeta{
		RequestID:    requestID,
		BrandName:    req.BrandName,
		WebsiteURL:   req.WebsiteURL,
		Email:        req.Email,
		Model:        res.Model,
		InputTokens:  res.Usage.Input,
		OutputTokens: res.Usage.Output,
		TotalTokens:  res.Usage.Total,
		Duration:     res.Duration,
		GeneratedAt:  startedAt,
		Competitors:  req.Competitors,
		Topics:       req.Topics,
		TestPrompts:  req.TestPrompts,
		Personas:     req.Personas,
	}
	path, err := s.Store.Save(ctx, req.BrandName, res.Text, meta)
	if err != nil {
		s.Log.Error("report save failed", "requestId", requestID, "brand", req.BrandName, "error", err)
		s.recordHistory(ctx, requestID, req.BrandName, res, "", "failed")
		return nil, err
	}

	s.archive(ctx, req.BrandName, path, res.Text, meta)
	s.recordHistory(ctx, requestID, req.BrandName, res, path, "completed")

	return &AnalyzeResult{
		RequestID:  requestID,
		BrandName:  req.BrandName,
		FilePath:   path,
		FileName:   baseName(path),
		Model:      res.Model,
		Usage:      res.Usage,
		DurationMS: s.Clock.Now().Sub(startedAt).Milliseconds(),
		Depth:      res.Depth(),
	}, nil
}

// archive mirrors the saved report off-box. Best-effort: failure is logged,
// never surfaced.
func (s *Service) archive(ctx context.Context, brandName, path, text string, meta reports.SaveMeta) {
	if s.Archiver == nil {
		return
	}
	if _, err := s.Archiver.Archive(ctx, dirName(path), baseName(path), text); err != nil {
		s.Log.Warn("report archive failed", "requestId", meta.RequestID, "brand", brandName, "error", err)
	}
}

// recordHistory writes the audit row. Best-effort: failure is logged only.
func (s *Service) recordHistory(ctx context.Context, requestID, brandName string, res *domain.Result, path, status string) {
	if s.History == nil {
		return
	}
	e := &reports.HistoryEntry{
		RequestID:  requestID,
		BrandName:  brandName,
		ReportPath: path,
		Status:     status,
		CreatedAt:  s.Clock.Now(),
	}
	if res != nil {
		e.Model = res.Model
		e.InputTokens = res.Usage.Input
		e.OutputTokens = res.Usage.Output
		e.TotalTokens = res.Usage.Total
		e.DurationMS = res.Duration.Milliseconds()
	}
	if err := s.History.Save(ctx, e); err != nil {
		s.Log.Warn("history save failed", "requestId", requestID, "error", err)
	}
}

func baseName(path string) string { return filepath.Base(path) }

// dirName returns the brand folder component of a saved report path.
func dirName(path string) string { return filepath.Base(filepath.Dir(path)) }

// BulkFailure describes one brand that failed inside a bulk run.
type BulkFailure struct {
	BrandName string `json:"brandName"`
	Error     string `json:"error"`
}

// BulkResult is the per-brand breakdown of a bulk run.
type BulkResult struct {
	Successful []*AnalyzeResult `json:"successful"`
	Failed     []BulkFailure    `json:"failed"`
	Requested  int              `json:"requested"`
	Succeeded  int              `json:"succeeded"`
}

// Bulk analyzes each brand in order, sequentially. One brand failing never
// aborts the rest of the batch.
func (s *Service) Bulk(ctx context.Context, brandNames []string) *BulkResult {
	out := &BulkResult{Requested: len(brandNames)}
	for _, name := range brandNames {
		req := &domain.Request{BrandName: name}
		if err := req.Validate(); err != nil {
			out.Failed = append(out.Failed, BulkFailure{BrandName: name, Error: err.Error()})
			continue
		}
		res, err := s.Analyze(ctx, req)
		if err != nil {
			out.Failed = append(out.Failed, BulkFailure{BrandName: name, Error: err.Error()})
			continue
		}
		out.Successful = append(out.Successful, res)
	}
	out.Succeeded = len(out.Successful)
	return out
}
