package alert

import (
	"context"
	"log/slog"
	"time"
)

type Severity string

const SeverityCritical Severity = "critical"

// Alert is an operator-facing event that needs a human to look at it.
type Alert struct {
	Type       string            `json:"type"`
	Severity   Severity          `json:"severity"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Alerter interface {
	Alert(ctx context.Context, a Alert) error
}

// LogAlerter writes alerts to the structured log only.
type LogAlerter struct {
	logger *slog.Logger
}

func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAlerter{logger: logger}
}

func (l *LogAlerter) Alert(ctx context.Context, a Alert) error {
	attrs := []any{
		slog.String("alert_type", a.Type),
		slog.String("severity", string(a.Severity)),
		slog.Time("occurred_at", a.OccurredAt),
	}
	for k, v := range a.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	l.logger.ErrorContext(ctx, "ALERT: "+a.Message, attrs...)
	return nil
}
