package amqp

import (
	"encoding/json"
	"time"
)

// ForecastMessage announces a completed forecast run. It carries the
// summary only; consumers that need the full result re-run the model
// or read the audit table.
type ForecastMessage struct {
	UserID         string    `json:"user_id"`
	Category       string    `json:"category,omitempty"`
	ModelType      string    `json:"model_type"`
	DaysAhead      int       `json:"days_ahead"`
	TotalPredicted float64   `json:"total_predicted"`
	Trend          string    `json:"trend"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewForecastMessage stamps a forecast summary with the current time.
func NewForecastMessage(userID, category, modelType string, daysAhead int, totalPredicted float64, trend string) *ForecastMessage {
	return &ForecastMessage{
		UserID:         userID,
		Category:       category,
		ModelType:      modelType,
		DaysAhead:      daysAhead,
		TotalPredicted: totalPredicted,
		Trend:          trend,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ForecastMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func ForecastMessageFromJSON(data []byte) (*ForecastMessage, error) {
	var msg ForecastMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
