package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HealthChecker defines interface for dependency health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// FilesystemHealthChecker verifies the report root is writable.
type FilesystemHealthChecker struct {
	Dir string
}

func (f *FilesystemHealthChecker) Check(ctx context.Context) error {
	probe := filepath.Join(f.Dir, ".healthcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}

// HealthStatus represents the aggregate health response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs,omitempty"`
}

// LivenessHandler answers the basic health probe.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// DetailedHealthHandler runs all dependency checks and attaches process
// metrics. Unhealthy dependencies turn the response into a 503.
func DetailedHealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    make(map[string]CheckStatus),
			Metrics:   GetMetrics(),
		}

		for name, checker := range checkers {
			start := time.Now()
			if err := checker.Check(ctx); err != nil {
				health.Status = "unhealthy"
				health.Checks[name] = CheckStatus{
					Status:    "unhealthy",
					Message:   err.Error(),
					LatencyMS: time.Since(start).Milliseconds(),
				}
			} else {
				health.Checks[name] = CheckStatus{
					Status:    "healthy",
					LatencyMS: time.Since(start).Milliseconds(),
				}
			}
		}

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(health)
	}
}
