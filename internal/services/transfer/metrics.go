package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransfer(string, float64)       {}
func (n *NoopMetricsCollector) RecordError(string, string)           {}
func (n *NoopMetricsCollector) RecordDuration(string, time.Duration) {}

type noopCache struct{}

func (noopCache) InvalidateAccount(context.Context, uuid.UUID) error { return nil }
