package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsCollector defines the interface for collecting ledger metrics.
type MetricsCollector interface {
	RecordTransfer(kind string, amount decimal.Decimal)
	RecordError(operation, errType string)
	RecordOperationDuration(operation string, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransfer(string, decimal.Decimal) {}

func (NoopMetricsCollector) RecordError(string, string) {}

func (NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
