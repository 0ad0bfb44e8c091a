package analysis

import (
	"context"
	"time"
)

// Generator port (interface for the upstream text-generation provider)
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
	Status(ctx context.Context) ProviderStatus
}

// ProviderStatus reports upstream reachability for the health endpoint.
type ProviderStatus struct {
	Status  string        `json:"status"` // "operational" or "error"
	Latency time.Duration `json:"-"`
	Message string        `json:"message,omitempty"`
}
