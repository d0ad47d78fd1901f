package repository

import (
	"context"

	"intake-triage/internal/domain"
)

// Noop discards events. It is used when no event table is configured.
type Noop struct{}

func (Noop) Record(context.Context, domain.IntakeEvent) error { return nil }
