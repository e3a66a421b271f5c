package server

import (
	"context"

	"github.com/mcasillasm/RFManalisis/internal/store"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// SourceHealthService verifies the transaction source as part of health checks.
type SourceHealthService struct {
	Source store.Source
}

// Probe implements the HealthService interface.
func (s SourceHealthService) Probe(ctx context.Context) error {
	if s.Source == nil {
		return nil
	}
	if p, ok := s.Source.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
