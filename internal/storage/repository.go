package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spendcast/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transactions and forecast audit records.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.TransactionWriter.
func (r *SQLiteRepository) Append(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, amount_cents, category, type)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, tx.Date.String(), tx.Amount.Cents, tx.Category, string(tx.Type))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", userID,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return strconv.FormatInt(id, 10), nil
}

// ListByUser implements store.TransactionReader.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID, category string) ([]core.Transaction, error) {
	query := `SELECT date, amount_cents, category, type FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			dateStr string
			cents   int64
			cat     string
			txType  string
		)
		if err := rows.Scan(&dateStr, &cents, &cat, &txType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		out = append(out, core.Transaction{
			Date:     date,
			Amount:   core.Money{Cents: cents},
			Category: cat,
			Type:     core.TransactionType(txType),
		})
	}
	return out, rows.Err()
}

// ForecastAudit is one recorded forecast run, written by the audit worker.
type ForecastAudit struct {
	ID             int64
	UserID         string
	Category       string
	ModelType      string
	DaysAhead      int
	TotalPredicted float64
	Trend          string
	CreatedAt      time.Time
}

// InsertForecastAudit records a completed forecast.
func (r *SQLiteRepository) InsertForecastAudit(ctx context.Context, a ForecastAudit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO forecast_audit (user_id, category, model_type, days_ahead, total_predicted, trend)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Category, a.ModelType, a.DaysAhead, a.TotalPredicted, a.Trend)
	if err != nil {
		return fmt.Errorf("insert forecast audit: %w", err)
	}

	slog.InfoContext(ctx, "Forecast audit recorded",
		"user_id", a.UserID,
		"model_type", a.ModelType,
		"days_ahead", a.DaysAhead,
		"trend", a.Trend)
	return nil
}

// ListForecastAudits returns the most recent audit rows for a user.
func (r *SQLiteRepository) ListForecastAudits(ctx context.Context, userID string, limit int) ([]ForecastAudit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, model_type, days_ahead, total_predicted, trend, created_at
		 FROM forecast_audit WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list forecast audits: %w", err)
	}
	defer rows.Close()

	var out []ForecastAudit
	for rows.Next() {
		var (
			a         ForecastAudit
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Category, &a.ModelType,
			&a.DaysAhead, &a.TotalPredicted, &a.Trend, &createdAt); err != nil {
			return nil, fmt.Errorf("scan forecast audit: %w", err)
		}
		// SQLite stores CURRENT_TIMESTAMP as "YYYY-MM-DD HH:MM:SS".
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			a.CreatedAt = ts
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
