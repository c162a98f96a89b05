package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendcast/internal/core"
	"spendcast/internal/forecast"
	"spendcast/internal/services"
)

const defaultDaysAhead = 30

type predictRequest struct {
	UserID    string `json:"user_id"`
	Category  string `json:"category"`
	DaysAhead int    `json:"days_ahead"`
	ModelType string `json:"model_type"`
}

type predictionPoint struct {
	Date            string   `json:"date"`
	PredictedAmount float64  `json:"predicted_amount"`
	ConfidenceLower *float64 `json:"confidence_lower,omitempty"`
	ConfidenceUpper *float64 `json:"confidence_upper,omitempty"`
}

type predictionResponse struct {
	UserID           string            `json:"user_id"`
	Category         string            `json:"category,omitempty"`
	ModelType        string            `json:"model_type"`
	DaysAhead        int               `json:"days_ahead"`
	Predictions      []predictionPoint `json:"predictions"`
	TotalPredicted   float64           `json:"total_predicted"`
	AvgDailySpending float64           `json:"avg_daily_spending"`
	Trend            string            `json:"trend"`
	AccuracyScore    *float64          `json:"accuracy_score,omitempty"`
}

type categoryInsightResponse struct {
	Category       string  `json:"category"`
	CurrentAvg     float64 `json:"current_avg"`
	PredictedAvg   float64 `json:"predicted_avg"`
	Trend          string  `json:"trend"`
	Recommendation string  `json:"recommendation"`
}

type insightsResponse struct {
	UserID                 string                    `json:"user_id"`
	DaysAhead              int                       `json:"days_ahead"`
	TotalPredictedSpending float64                   `json:"total_predicted_spending"`
	Categories             []categoryInsightResponse `json:"categories"`
	OverallTrend           string                    `json:"overall_trend"`
}

type compareResponse struct {
	UserID       string              `json:"user_id"`
	DaysAhead    int                 `json:"days_ahead"`
	Linear       *predictionResponse `json:"linear"`
	Sequence     *predictionResponse `json:"sequence,omitempty"`
	SequenceNote string              `json:"sequence_note,omitempty"`
}

type transactionRequest struct {
	UserID   string      `json:"user_id"`
	Date     string      `json:"date"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Type     string      `json:"type"`
}

type transactionResponse struct {
	Ref string `json:"ref"`
}

type auditEntry struct {
	Category       string  `json:"category,omitempty"`
	ModelType      string  `json:"model_type"`
	DaysAhead      int     `json:"days_ahead"`
	TotalPredicted float64 `json:"total_predicted"`
	Trend          string  `json:"trend"`
	CreatedAt      string  `json:"created_at"`
}

type auditResponse struct {
	UserID string       `json:"user_id"`
	Audits []auditEntry `json:"audits"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "spendcast",
		"endpoints": []string{
			"POST /api/predictions/predict",
			"GET /api/predictions/insights/{user_id}",
			"GET /api/predictions/category/{user_id}/{category}",
			"GET /api/predictions/compare/{user_id}",
			"GET /api/predictions/audit/{user_id}",
			"POST /api/transactions",
		},
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.DaysAhead == 0 {
		req.DaysAhead = defaultDaysAhead
	}

	result, err := s.svc.Predict(r.Context(), req.UserID, req.Category, req.ModelType, req.DaysAhead)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	modelType := req.ModelType
	if modelType == "" {
		modelType = forecast.ModelLinear
	}
	writeJSON(w, http.StatusOK, toPredictionResponse(req.UserID, req.Category, modelType, req.DaysAhead, result))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	daysAhead, err := parseDaysAhead(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := insightsCacheKey(userID, daysAhead)
	if cached, found := s.insightsCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.svc.Insights(r.Context(), userID, daysAhead)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := insightsResponse{
		UserID:                 userID,
		DaysAhead:              daysAhead,
		TotalPredictedSpending: result.TotalPredicted,
		Categories:             make([]categoryInsightResponse, 0, len(result.Categories)),
		OverallTrend:           string(result.OverallTrend),
	}
	for _, c := range result.Categories {
		resp.Categories = append(resp.Categories, categoryInsightResponse{
			Category:       c.Category,
			CurrentAvg:     c.CurrentAvg,
			PredictedAvg:   c.PredictedAvg,
			Trend:          string(c.Trend),
			Recommendation: c.Recommendation,
		})
	}

	s.insightsCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategoryPrediction(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	category := r.PathValue("category")
	daysAhead, err := parseDaysAhead(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	modelType := strings.TrimSpace(r.URL.Query().Get("model_type"))

	result, err := s.svc.Predict(r.Context(), userID, category, modelType, daysAhead)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if modelType == "" {
		modelType = forecast.ModelLinear
	}
	writeJSON(w, http.StatusOK, toPredictionResponse(userID, category, modelType, daysAhead, result))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	daysAhead, err := parseDaysAhead(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := s.svc.Compare(r.Context(), userID, daysAhead)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := compareResponse{
		UserID:       userID,
		DaysAhead:    daysAhead,
		SequenceNote: cmp.SequenceNote,
	}
	if cmp.Linear != nil {
		lr := toPredictionResponse(userID, "", forecast.ModelLinear, daysAhead, cmp.Linear)
		resp.Linear = &lr
	}
	if cmp.Sequence != nil {
		sr := toPredictionResponse(userID, "", forecast.ModelSequence, daysAhead, cmp.Sequence)
		resp.Sequence = &sr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAudits(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q: must be a positive integer", v))
			return
		}
		limit = n
	}

	audits, err := s.svc.Audits(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, services.ErrAuditUnavailable) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeDomainError(w, r, err)
		return
	}

	resp := auditResponse{UserID: userID, Audits: make([]auditEntry, 0, len(audits))}
	for _, a := range audits {
		resp.Audits = append(resp.Audits, auditEntry{
			Category:       a.Category,
			ModelType:      a.ModelType,
			DaysAhead:      a.DaysAhead,
			TotalPredicted: a.TotalPredicted,
			Trend:          a.Trend,
			CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", req.Date))
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid amount %q", req.Amount.String()))
		return
	}

	txType := core.TransactionType(req.Type)
	if req.Type == "" {
		txType = core.Expense
	}

	tx := core.Transaction{
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Category: strings.TrimSpace(req.Category),
		Type:     txType,
	}

	ref, err := s.svc.Ingest(r.Context(), req.UserID, tx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// New data invalidates every cached insight horizon for this user.
	s.insightsCache.DeletePrefix("insights:" + req.UserID + ":")

	writeJSON(w, http.StatusCreated, transactionResponse{Ref: ref})
}

func toPredictionResponse(userID, category, modelType string, daysAhead int, result *forecast.Result) predictionResponse {
	resp := predictionResponse{
		UserID:           userID,
		Category:         category,
		ModelType:        modelType,
		DaysAhead:        daysAhead,
		Predictions:      make([]predictionPoint, 0, len(result.Points)),
		TotalPredicted:   result.Total,
		AvgDailySpending: result.AvgDaily,
		Trend:            string(result.Trend),
		AccuracyScore:    result.Accuracy,
	}
	for _, p := range result.Points {
		resp.Predictions = append(resp.Predictions, predictionPoint{
			Date:            p.Date.Format("2006-01-02"),
			PredictedAmount: p.Predicted,
			ConfidenceLower: p.Lower,
			ConfidenceUpper: p.Upper,
		})
	}
	return resp
}

func insightsCacheKey(userID string, daysAhead int) string {
	return "insights:" + userID + ":" + strconv.Itoa(daysAhead)
}

// parseDaysAhead reads the days_ahead query parameter, defaulting when
// absent. Range checks belong to the forecasting layer.
func parseDaysAhead(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("days_ahead"))
	if v == "" {
		return defaultDaysAhead, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid days_ahead %q: must be an integer", v)
	}
	return days, nil
}

// decodeJSON parses a JSON request body with a sane size ceiling.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
