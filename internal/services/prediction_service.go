package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"spendcast/internal/amqp"
	"spendcast/internal/core"
	"spendcast/internal/forecast"
	"spendcast/internal/storage"
	"spendcast/internal/store"
)

// TransactionStore is the data source the prediction service reads from
// and writes to.
type TransactionStore interface {
	store.TransactionWriter
	store.TransactionReader
}

// Publisher emits forecast completion events. Optional; a nil publisher
// disables eventing without affecting predictions.
type Publisher interface {
	PublishForecastCompleted(ctx context.Context, msg *amqp.ForecastMessage) error
}

// AuditStore is implemented by backends that persist the forecast audit
// trail written by the worker.
type AuditStore interface {
	ListForecastAudits(ctx context.Context, userID string, limit int) ([]storage.ForecastAudit, error)
}

// ErrAuditUnavailable signals that the configured backend keeps no
// audit trail.
var ErrAuditUnavailable = errors.New("audit trail not available for this backend")

const defaultAuditLimit = 50

// PredictionService orchestrates transaction retrieval, forecasting and
// event publication.
type PredictionService struct {
	store     TransactionStore
	linear    *forecast.LinearPredictor
	sequence  *forecast.SequenceForecaster
	insights  *forecast.InsightAggregator
	publisher Publisher
}

func NewPredictionService(store TransactionStore, linear *forecast.LinearPredictor, sequence *forecast.SequenceForecaster, publisher Publisher) *PredictionService {
	if linear == nil {
		linear = forecast.NewLinearPredictor()
	}
	if sequence == nil {
		sequence = forecast.NewSequenceForecaster(forecast.DefaultLookback, true)
	}
	return &PredictionService{
		store:     store,
		linear:    linear,
		sequence:  sequence,
		insights:  forecast.NewInsightAggregator(linear),
		publisher: publisher,
	}
}

// Comparison holds one forecast per model for the same horizon. Sequence
// is nil when that model could not run; SequenceNote says why.
type Comparison struct {
	Linear       *forecast.Result
	Sequence     *forecast.Result
	SequenceNote string
}

// Predict produces a spending forecast for one user, optionally narrowed
// to a category. An empty modelType defaults to linear.
func (s *PredictionService) Predict(ctx context.Context, userID, category, modelType string, daysAhead int) (*forecast.Result, error) {
	predictor, modelType, err := s.resolveModel(modelType)
	if err != nil {
		return nil, err
	}

	series, err := s.loadSeries(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	result, err := predictor.Predict(series, daysAhead)
	if err != nil {
		return nil, err
	}

	s.publishForecast(ctx, userID, category, modelType, daysAhead, result)
	return result, nil
}

// Insights forecasts every spending category for a user and folds the
// results into a portfolio view.
func (s *PredictionService) Insights(ctx context.Context, userID string, daysAhead int) (*forecast.InsightResult, error) {
	txs, err := s.store.ListByUser(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	byCategory := make(map[string][]core.Transaction)
	for _, tx := range txs {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
	}

	result, err := s.insights.Aggregate(byCategory, daysAhead)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		msg := amqp.NewForecastMessage(userID, "", forecast.ModelLinear, daysAhead, result.TotalPredicted, string(result.OverallTrend))
		if err := s.publisher.PublishForecastCompleted(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish insights event", "user_id", userID, "error", err)
		}
	}
	return result, nil
}

// Compare runs the linear and sequence models side by side. The linear
// model is authoritative: its failure fails the call. The sequence model
// is best-effort and its absence is reported, not fatal.
func (s *PredictionService) Compare(ctx context.Context, userID string, daysAhead int) (*Comparison, error) {
	series, err := s.loadSeries(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{}
	var seqErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.linear.Predict(series, daysAhead)
		if err != nil {
			return err
		}
		cmp.Linear = result
		s.publishForecast(gctx, userID, "", forecast.ModelLinear, daysAhead, result)
		return nil
	})
	g.Go(func() error {
		result, err := s.sequence.Predict(series, daysAhead)
		if err != nil {
			seqErr = err
			return nil
		}
		cmp.Sequence = result
		s.publishForecast(gctx, userID, "", forecast.ModelSequence, daysAhead, result)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if seqErr != nil {
		cmp.SequenceNote = seqErr.Error()
	}
	return cmp, nil
}

// Ingest validates and stores a new transaction.
func (s *PredictionService) Ingest(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user_id must not be empty", forecast.ErrInvalidParameter)
	}
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", forecast.ErrInvalidParameter, err)
	}

	ref, err := s.store.Append(ctx, userID, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	return ref, nil
}

// Audits returns the user's most recent forecast audit rows, newest
// first. Returns ErrAuditUnavailable when the backend keeps no trail.
func (s *PredictionService) Audits(ctx context.Context, userID string, limit int) ([]storage.ForecastAudit, error) {
	audits, ok := s.store.(AuditStore)
	if !ok {
		return nil, ErrAuditUnavailable
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return audits.ListForecastAudits(ctx, userID, limit)
}

func (s *PredictionService) resolveModel(modelType string) (forecast.Predictor, string, error) {
	switch modelType {
	case "", forecast.ModelLinear:
		return s.linear, forecast.ModelLinear, nil
	case forecast.ModelSequence:
		return s.sequence, forecast.ModelSequence, nil
	default:
		return nil, "", fmt.Errorf("%w: model_type must be %q or %q, got %q",
			forecast.ErrInvalidParameter, forecast.ModelLinear, forecast.ModelSequence, modelType)
	}
}

func (s *PredictionService) loadSeries(ctx context.Context, userID, category string) (forecast.DailySeries, error) {
	txs, err := s.store.ListByUser(ctx, userID, category)
	if err != nil {
		return forecast.DailySeries{}, fmt.Errorf("list transactions: %w", err)
	}
	return forecast.Aggregate(txs)
}

func (s *PredictionService) publishForecast(ctx context.Context, userID, category, modelType string, daysAhead int, result *forecast.Result) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewForecastMessage(userID, category, modelType, daysAhead, result.Total, string(result.Trend))
	if err := s.publisher.PublishForecastCompleted(ctx, msg); err != nil {
		// Events are advisory; the forecast itself already succeeded.
		slog.WarnContext(ctx, "Failed to publish forecast event",
			"user_id", userID,
			"model_type", modelType,
			"error", err)
	}
}
