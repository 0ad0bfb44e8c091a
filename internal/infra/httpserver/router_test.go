package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brandlens/brandlens/internal/application"
	appanalysis "github.com/brandlens/brandlens/internal/application/analysis"
	domain "github.com/brandlens/brandlens/internal/domain/analysis"
	"github.com/brandlens/brandlens/internal/domain/reports"
	"github.com/brandlens/brandlens/internal/infra/storage"
	"github.com/brandlens/brandlens/internal/logging"
)

const testKey = "test-api-key"

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (*domain.Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &domain.Result{
		Text:     "stub analysis",
		Usage:    domain.TokenUsage{Input: 10, Output: 20, Total: 30},
		Duration: time.Second,
		Model:    "gpt-4o",
	}, nil
}

func (g *stubGenerator) Status(ctx context.Context) domain.ProviderStatus {
	return domain.ProviderStatus{Status: "operational"}
}

func newTestServer(t *testing.T, gen domain.Generator) (*httptest.Server, *storage.FSStore) {
	t.Helper()
	store, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := logging.New("error")
	svc := &appanalysis.Service{
		Generator: gen,
		Store:     store,
		Clock:     application.SystemClock{},
		Log:       logger,
	}
	handler := NewRouter(svc, store, gen, nil, logger, Options{
		APIKeys:           []string{testKey},
		RateLimitCapacity: 1000,
		RateLimitRefill:   1000,
		ReportRoot:        store.Root(),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, store
}

func doRequest(t *testing.T, method, url, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func authed() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testKey, "Content-Type": "application/json"}
}

func TestHealthIsOpen(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})
	resp, body := doRequest(t, "GET", srv.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("health body = %v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp, _ := doRequest(t, "GET", srv.URL+"/api/analysis/statistics", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doRequest(t, "GET", srv.URL+"/api/analysis/statistics", "", map[string]string{"x-api-key": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", resp.StatusCode)
	}

	// A valid key in Authorization without the Bearer scheme is rejected.
	resp, _ = doRequest(t, "GET", srv.URL+"/api/analysis/statistics", "", map[string]string{"Authorization": testKey})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bare Authorization key: status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doRequest(t, "GET", srv.URL+"/api/analysis/statistics", "", map[string]string{"Authorization": "Bearer " + testKey})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bearer key: status = %d, want 200", resp.StatusCode)
	}

	resp, _ = doRequest(t, "GET", srv.URL+"/api/analysis/statistics", "", map[string]string{"x-api-key": testKey})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("x-api-key: status = %d, want 200", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &stubGenerator{})

	resp, body := doRequest(t, "POST", srv.URL+"/api/analysis/comprehensive",
		`{"brandName":"Acme Corp","websiteUrl":"https://acme.test"}`, authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	result := body["result"].(map[string]any)
	if result["brandName"] != "Acme Corp" {
		t.Errorf("result.brandName = %v", result["brandName"])
	}

	sums, err := store.List(context.Background(), reports.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].BrandFolder != "acme_corp" {
		t.Errorf("stored reports = %+v, want one under acme_corp", sums)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp, body := doRequest(t, "POST", srv.URL+"/api/analysis/comprehensive",
		`{"brandName":"   "}`, authed())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "validation_failed" {
		t.Errorf("error = %v", body["error"])
	}
	if body["details"] == nil {
		t.Error("missing per-field details")
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	gen := &stubGenerator{err: &domain.UpstreamError{Kind: domain.ErrRateLimited, Message: "slow down"}}
	srv, _ := newTestServer(t, gen)

	resp, body := doRequest(t, "POST", srv.URL+"/api/analysis/comprehensive",
		`{"brandName":"Acme"}`, authed())
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if body["error"] != "rate_limited" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestFileLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	_, body := doRequest(t, "POST", srv.URL+"/api/analysis/comprehensive",
		`{"brandName":"Acme"}`, authed())
	fileName := body["result"].(map[string]any)["fileName"].(string)

	resp, body := doRequest(t, "GET", srv.URL+"/api/analysis/files/"+fileName, "", authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get file status = %d", resp.StatusCode)
	}
	content := body["result"].(map[string]any)["content"].(string)
	if !strings.Contains(content, "stub analysis") {
		t.Error("file content missing analysis text")
	}

	req, _ := http.NewRequest("GET", srv.URL+"/api/analysis/files/"+fileName+"/download", nil)
	req.Header.Set("x-api-key", testKey)
	dlResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer dlResp.Body.Close()
	if ct := dlResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("download content type = %q", ct)
	}
	if cd := dlResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("download disposition = %q", cd)
	}

	resp, _ = doRequest(t, "DELETE", srv.URL+"/api/analysis/files/"+fileName, "", authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, body = doRequest(t, "DELETE", srv.URL+"/api/analysis/files/"+fileName, "", authed())
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != "not_found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestBulkEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp, _ := doRequest(t, "POST", srv.URL+"/api/analysis/bulk",
		`{"brands":["A1","A2","A3","A4","A5","A6","A7","A8","A9","A10","A11"]}`, authed())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("11 brands: status = %d, want 400", resp.StatusCode)
	}

	resp, body := doRequest(t, "POST", srv.URL+"/api/analysis/bulk",
		`{"brands":["BrandA","BrandB"]}`, authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bulk status = %d", resp.StatusCode)
	}
	result := body["result"].(map[string]any)
	if result["succeeded"] != float64(2) {
		t.Errorf("succeeded = %v, want 2", result["succeeded"])
	}
}

func TestListFilesPagination(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	for _, brand := range []string{"One", "Two", "Three"} {
		doRequest(t, "POST", srv.URL+"/api/analysis/comprehensive",
			`{"brandName":"`+brand+`"}`, authed())
	}

	resp, body := doRequest(t, "GET", srv.URL+"/api/analysis/files?limit=2", "", authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	result := body["result"].(map[string]any)
	if result["total"] != float64(3) {
		t.Errorf("total = %v, want 3", result["total"])
	}
	files := result["files"].([]any)
	if len(files) != 2 {
		t.Errorf("page size = %d, want 2", len(files))
	}

	resp, body = doRequest(t, "GET", srv.URL+"/api/analysis/files?brandName=two", "", authed())
	result = body["result"].(map[string]any)
	if result["total"] != float64(1) {
		t.Errorf("brand filter total = %v, want 1", result["total"])
	}

	resp, _ = doRequest(t, "GET", srv.URL+"/api/analysis/files?fromDate=garbage", "", authed())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{})

	resp, body := doRequest(t, "GET", srv.URL+"/api/analysis/history", "", authed())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	if body["success"] != true {
		t.Errorf("body = %v", body)
	}
}
