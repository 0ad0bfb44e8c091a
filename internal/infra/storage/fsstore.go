package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brandlens/brandlens/internal/domain/reports"
)

const (
	maxBrandTokenLen = 50
	reportExt        = ".txt"
)

// FSStore keeps reports as plain text files under root, one folder per
// sanitized brand token. The tree is the database: every query re-walks it.
type FSStore struct {
	root string
}

// NewFSStore creates the report root if absent.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create report root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Root returns the report root directory.
func (s *FSStore) Root() string { return s.root }

// Sanitize turns a brand name into a folder-safe token: keep alphanumerics,
// spaces, hyphens and underscores, collapse whitespace runs to a single
// underscore, lowercase, cap at 50 chars. Idempotent.
func Sanitize(brandName string) string {
	var b strings.Builder
	for _, r := range brandName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	token := strings.ToLower(strings.Join(fields, "_"))
	if len(token) > maxBrandTokenLen {
		token = token[:maxBrandTokenLen]
	}
	return token
}

// Save writes header + analysis text + footer as one UTF-8 file under the
// brand folder and returns the full path. Folder creation is idempotent.
// There is no partial-write protection; a crash mid-write leaves a truncated
// file.
func (s *FSStore) Save(ctx context.Context, brandName, text string, meta reports.SaveMeta) (string, error) {
	token := Sanitize(brandName)
	if token == "" {
		token = "unknown"
	}
	dir := filepath.Join(s.root, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create brand folder: %w", err)
	}

	shortID := meta.RequestID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	fileName := fmt.Sprintf("%s_analysis_%s_%s%s",
		token,
		meta.GeneratedAt.Format("20060102_150405"),
		shortID,
		reportExt,
	)
	path := filepath.Join(dir, fileName)

	if err := os.WriteFile(path, []byte(renderReport(text, meta)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func renderReport(text string, meta reports.SaveMeta) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	b.WriteString(rule + "\n")
	b.WriteString("BRAND VISIBILITY ANALYSIS REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Brand:        %s\n", meta.BrandName)
	if meta.WebsiteURL != "" {
		fmt.Fprintf(&b, "Website:      %s\n", meta.WebsiteURL)
	}
	if meta.Email != "" {
		fmt.Fprintf(&b, "Contact:      %s\n", meta.Email)
	}
	fmt.Fprintf(&b, "Generated:    %s\n", meta.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Request ID:   %s\n", meta.RequestID)
	fmt.Fprintf(&b, "Model:        %s\n", meta.Model)
	fmt.Fprintf(&b, "Tokens:       input=%d output=%d total=%d\n",
		meta.InputTokens, meta.OutputTokens, meta.TotalTokens)
	fmt.Fprintf(&b, "Duration:     %s\n", meta.Duration.Round(time.Millisecond))

	if len(meta.Competitors) > 0 {
		fmt.Fprintf(&b, "Competitors:  %s\n", strings.Join(meta.Competitors, ", "))
	}
	if len(meta.Topics) > 0 {
		fmt.Fprintf(&b, "Topics:       %s\n", strings.Join(meta.Topics, ", "))
	}
	if len(meta.TestPrompts) > 0 {
		b.WriteString("Test prompts:\n")
		for _, p := range meta.TestPrompts {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if meta.Personas != "" {
		fmt.Fprintf(&b, "Personas:     %s\n", meta.Personas)
	}
	b.WriteString(rule + "\n\n")

	b.WriteString(text)

	b.WriteString("\n\n" + rule + "\n")
	fmt.Fprintf(&b, "End of report %s\n", meta.RequestID)
	b.WriteString(rule + "\n")
	return b.String()
}

// List walks the report root one level deep. Subdirectories are brand
// folders; loose .txt files in the root are reported under the legacy
// sentinel brand. Results are sorted by creation time descending.
func (s *FSStore) List(ctx context.Context, filter reports.ListFilter) ([]reports.Summary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read report root: %w", err)
	}

	var out []reports.Summary
	for _, e := range entries {
		if e.IsDir() {
			sums, err := s.listFolder(e.Name())
			if err != nil {
				return nil, err
			}
			out = append(out, sums...)
			continue
		}
		if strings.HasSuffix(e.Name(), reportExt) {
			info, err := e.Info()
			if err != nil {
				continue
			}
			out = append(out, reports.Summary{
				FileName:    e.Name(),
				BrandFolder: reports.LegacyBrand,
				SizeBytes:   info.Size(),
				CreatedAt:   info.ModTime(),
			})
		}
	}

	out = applyFilter(out, filter)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FSStore) listFolder(folder string) ([]reports.Summary, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		return nil, fmt.Errorf("read brand folder %s: %w", folder, err)
	}
	var out []reports.Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), reportExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, reports.Summary{
			FileName:    e.Name(),
			BrandFolder: folder,
			SizeBytes:   info.Size(),
			CreatedAt:   info.ModTime(),
		})
	}
	return out, nil
}

func applyFilter(in []reports.Summary, filter reports.ListFilter) []reports.Summary {
	brand := strings.ToLower(strings.TrimSpace(filter.BrandName))
	// A raw spelling like "Acme!!" should still match the acme folder, so
	// the sanitized form is tried as well.
	sanitized := Sanitize(filter.BrandName)

	out := in[:0]
	for _, sum := range in {
		if brand != "" {
			folder := strings.ToLower(sum.BrandFolder)
			if !strings.Contains(folder, brand) && (sanitized == "" || !strings.Contains(folder, sanitized)) {
				continue
			}
		}
		if !filter.FromDate.IsZero() && sum.CreatedAt.Before(filter.FromDate) {
			continue
		}
		if !filter.ToDate.IsZero() && sum.CreatedAt.After(filter.ToDate) {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// locate resolves a file name to its path. With a known brand folder the
// lookup is direct; otherwise every folder is scanned and the first match
// wins (directory listing order, undefined beyond that).
func (s *FSStore) locate(fileName, brandFolder string) (string, string, error) {
	if err := checkComponent(fileName); err != nil {
		return "", "", err
	}
	if brandFolder != "" {
		if err := checkComponent(brandFolder); err != nil {
			return "", "", err
		}
		path := filepath.Join(s.root, brandFolder, fileName)
		if brandFolder == reports.LegacyBrand {
			path = filepath.Join(s.root, fileName)
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", "", reports.ErrNotFound
			}
			return "", "", err
		}
		return path, brandFolder, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", "", fmt.Errorf("read report root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			path := filepath.Join(s.root, e.Name(), fileName)
			if _, err := os.Stat(path); err == nil {
				return path, e.Name(), nil
			}
			continue
		}
		if e.Name() == fileName {
			return filepath.Join(s.root, fileName), reports.LegacyBrand, nil
		}
	}
	return "", "", reports.ErrNotFound
}

// checkComponent rejects traversal attempts before any path is joined. Both
// the file name and a caller-supplied brand folder go through it.
func checkComponent(name string) error {
	if name == "" ||
		strings.ContainsAny(name, `/\`) ||
		strings.Contains(name, "..") {
		return fmt.Errorf("invalid path component %q", name)
	}
	return nil
}

// Read returns the report content plus file metadata.
func (s *FSStore) Read(ctx context.Context, fileName, brandFolder string) (*reports.Report, error) {
	path, folder, err := s.locate(fileName, brandFolder)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &reports.Report{
		Summary: reports.Summary{
			FileName:    fileName,
			BrandFolder: folder,
			SizeBytes:   info.Size(),
			CreatedAt:   info.ModTime(),
		},
		Content: string(data),
	}, nil
}

// Delete removes the report file. An emptied brand folder stays behind.
func (s *FSStore) Delete(ctx context.Context, fileName, brandFolder string) error {
	path, _, err := s.locate(fileName, brandFolder)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// Brands aggregates each brand folder (file count, size, latest mtime).
// Folders emptied by deletes still show up, with zero files.
func (s *FSStore) Brands(ctx context.Context) ([]reports.BrandFolder, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read report root: %w", err)
	}

	var out []reports.BrandFolder
	var legacy reports.BrandFolder
	for _, e := range entries {
		if e.IsDir() {
			sums, err := s.listFolder(e.Name())
			if err != nil {
				return nil, err
			}
			out = append(out, aggregate(e.Name(), sums))
			continue
		}
		if strings.HasSuffix(e.Name(), reportExt) {
			info, err := e.Info()
			if err != nil {
				continue
			}
			legacy.FileCount++
			legacy.TotalBytes += info.Size()
			if info.ModTime().After(legacy.LastModified) {
				legacy.LastModified = info.ModTime()
			}
		}
	}
	if legacy.FileCount > 0 {
		legacy.Name = reports.LegacyBrand
		out = append(out, legacy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func aggregate(name string, sums []reports.Summary) reports.BrandFolder {
	bf := reports.BrandFolder{Name: name}
	for _, sum := range sums {
		bf.FileCount++
		bf.TotalBytes += sum.SizeBytes
		if sum.CreatedAt.After(bf.LastModified) {
			bf.LastModified = sum.CreatedAt
		}
	}
	return bf
}

// Statistics recomputes the aggregate view over the whole tree on every
// call. Intentionally uncached.
func (s *FSStore) Statistics(ctx context.Context) (*reports.Statistics, error) {
	sums, err := s.List(ctx, reports.ListFilter{})
	if err != nil {
		return nil, err
	}
	stats := &reports.Statistics{PerBrand: make(map[string]reports.BrandStat)}
	for _, sum := range sums {
		stats.TotalFiles++
		stats.TotalBytes += sum.SizeBytes
		bs := stats.PerBrand[sum.BrandFolder]
		bs.FileCount++
		bs.TotalBytes += sum.SizeBytes
		stats.PerBrand[sum.BrandFolder] = bs
	}
	stats.TotalBrands = len(stats.PerBrand)
	if stats.TotalFiles > 0 {
		stats.AverageBytes = stats.TotalBytes / int64(stats.TotalFiles)
	}
	return stats, nil
}
