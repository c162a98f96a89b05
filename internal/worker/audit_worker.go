package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendcast/internal/amqp"
	"spendcast/internal/storage"
)

// AuditSink records completed forecast runs.
type AuditSink interface {
	InsertForecastAudit(ctx context.Context, a storage.ForecastAudit) error
}

// AuditWorker consumes forecast completion events and persists them to the
// audit table, giving an append-only history of what was forecast for whom.
type AuditWorker struct {
	sink AuditSink
}

func NewAuditWorker(sink AuditSink) *AuditWorker {
	return &AuditWorker{sink: sink}
}

// HandleForecastMessage processes a single forecast completion event.
func (w *AuditWorker) HandleForecastMessage(ctx context.Context, msg *amqp.ForecastMessage) error {
	if msg.UserID == "" {
		return fmt.Errorf("forecast message missing user_id")
	}
	if msg.ModelType == "" {
		return fmt.Errorf("forecast message missing model_type")
	}

	audit := storage.ForecastAudit{
		UserID:         msg.UserID,
		Category:       msg.Category,
		ModelType:      msg.ModelType,
		DaysAhead:      msg.DaysAhead,
		TotalPredicted: msg.TotalPredicted,
		Trend:          msg.Trend,
	}

	if err := w.sink.InsertForecastAudit(ctx, audit); err != nil {
		return fmt.Errorf("record forecast audit: %w", err)
	}

	slog.InfoContext(ctx, "Forecast audited",
		"user_id", msg.UserID,
		"model_type", msg.ModelType,
		"days_ahead", msg.DaysAhead,
		"trend", msg.Trend)

	return nil
}
