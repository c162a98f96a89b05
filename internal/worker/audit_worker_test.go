package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendcast/internal/amqp"
	"spendcast/internal/storage"
)

type fakeSink struct {
	audits []storage.ForecastAudit
	err    error
}

func (f *fakeSink) InsertForecastAudit(_ context.Context, a storage.ForecastAudit) error {
	if f.err != nil {
		return f.err
	}
	f.audits = append(f.audits, a)
	return nil
}

func TestAuditWorker_HandleForecastMessage(t *testing.T) {
	sink := &fakeSink{}
	w := NewAuditWorker(sink)

	msg := &amqp.ForecastMessage{
		UserID:         "alice",
		Category:       "food",
		ModelType:      "linear",
		DaysAhead:      30,
		TotalPredicted: 420.50,
		Trend:          "increasing",
		Timestamp:      time.Now(),
	}

	if err := w.HandleForecastMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleForecastMessage() error = %v", err)
	}

	if len(sink.audits) != 1 {
		t.Fatalf("recorded %d audits, want 1", len(sink.audits))
	}
	got := sink.audits[0]
	if got.UserID != "alice" || got.ModelType != "linear" || got.DaysAhead != 30 {
		t.Errorf("audit = %+v, want fields from message", got)
	}
	if got.TotalPredicted != 420.50 || got.Trend != "increasing" {
		t.Errorf("audit = %+v, want fields from message", got)
	}
}

func TestAuditWorker_RejectsIncompleteMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  *amqp.ForecastMessage
	}{
		{"missing user", &amqp.ForecastMessage{ModelType: "linear"}},
		{"missing model type", &amqp.ForecastMessage{UserID: "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			w := NewAuditWorker(sink)
			if err := w.HandleForecastMessage(context.Background(), tt.msg); err == nil {
				t.Error("HandleForecastMessage() should fail")
			}
			if len(sink.audits) != 0 {
				t.Errorf("recorded %d audits, want 0", len(sink.audits))
			}
		})
	}
}

func TestAuditWorker_PropagatesSinkError(t *testing.T) {
	sinkErr := errors.New("db locked")
	w := NewAuditWorker(&fakeSink{err: sinkErr})

	msg := &amqp.ForecastMessage{UserID: "alice", ModelType: "sequence", DaysAhead: 7}
	err := w.HandleForecastMessage(context.Background(), msg)
	if !errors.Is(err, sinkErr) {
		t.Errorf("HandleForecastMessage() error = %v, want wrapped %v", err, sinkErr)
	}
}
