package interfaces

import (
	"context"
	"time"
)

// SweepResult summarizes one publication sweep over all tenants.
// Per-tenant failures are collected, never propagated as a sweep error.
type SweepResult struct {
	Processed int       `json:"processed"`
	Published []string  `json:"published"`
	Skipped   []string  `json:"skipped"`
	Errors    []string  `json:"errors,omitempty"`
	Now       time.Time `json:"now"`
}

type PublicationService interface {
	RunSweep(ctx context.Context) (*SweepResult, error)
}
