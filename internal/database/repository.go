package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// CreateEvaluation inserts a persisted engine run.
func (r *Repository) CreateEvaluation(ctx context.Context, eval *SignalEvaluation) error {
	factors, err := json.Marshal(eval.ConfluenceFactors)
	if err != nil {
		return fmt.Errorf("marshal confluence factors: %w", err)
	}
	reasons, err := json.Marshal(eval.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}

	query := `
		INSERT INTO signal_evaluations
			(id, symbol, direction, entry_price, stop_loss, take_profit, confidence_score,
			 risk_reward_ratio, confluence_factors, is_valid, score, reasons, quality,
			 expected_win_rate, expected_rrr)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		eval.ID, eval.Symbol, eval.Direction, eval.EntryPrice, eval.StopLoss, eval.TakeProfit,
		eval.ConfidenceScore, eval.RiskRewardRatio, factors, eval.IsValid, eval.Score, reasons,
		eval.Quality, eval.ExpectedWinRate, eval.ExpectedRRR,
	).Scan(&eval.CreatedAt)
}

// GetEvaluationByID retrieves a single evaluation.
func (r *Repository) GetEvaluationByID(ctx context.Context, id string) (*SignalEvaluation, error) {
	query := `
		SELECT id, symbol, direction, entry_price, stop_loss, take_profit, confidence_score,
		       risk_reward_ratio, confluence_factors, is_valid, score, reasons, quality,
		       expected_win_rate, expected_rrr, created_at
		FROM signal_evaluations
		WHERE id = $1
	`
	eval, err := scanEvaluation(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return eval, err
}

// ListEvaluations returns the most recent evaluations, optionally filtered
// by symbol.
func (r *Repository) ListEvaluations(ctx context.Context, symbol string, limit int) ([]*SignalEvaluation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, symbol, direction, entry_price, stop_loss, take_profit, confidence_score,
		       risk_reward_ratio, confluence_factors, is_valid, score, reasons, quality,
		       expected_win_rate, expected_rrr, created_at
		FROM signal_evaluations
	`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, symbol, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []*SignalEvaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

// CreateAccountSnapshot records a broker balance observation.
func (r *Repository) CreateAccountSnapshot(ctx context.Context, snap *AccountSnapshot) error {
	if snap.Source == "" {
		snap.Source = "broker"
	}
	query := `
		INSERT INTO account_snapshots (balance, source)
		VALUES ($1, $2)
		RETURNING id, recorded_at
	`
	return r.db.Pool.QueryRow(ctx, query, snap.Balance, snap.Source).Scan(&snap.ID, &snap.RecordedAt)
}

// LatestAccountSnapshot returns the most recent balance observation, or nil.
func (r *Repository) LatestAccountSnapshot(ctx context.Context) (*AccountSnapshot, error) {
	snap := &AccountSnapshot{}
	query := `
		SELECT id, balance, source, recorded_at
		FROM account_snapshots
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	err := r.db.Pool.QueryRow(ctx, query).Scan(&snap.ID, &snap.Balance, &snap.Source, &snap.RecordedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// scanEvaluation reads one evaluation row, decoding the JSONB columns.
func scanEvaluation(row pgx.Row) (*SignalEvaluation, error) {
	eval := &SignalEvaluation{}
	var factors, reasons []byte

	err := row.Scan(
		&eval.ID, &eval.Symbol, &eval.Direction, &eval.EntryPrice, &eval.StopLoss, &eval.TakeProfit,
		&eval.ConfidenceScore, &eval.RiskRewardRatio, &factors, &eval.IsValid, &eval.Score, &reasons,
		&eval.Quality, &eval.ExpectedWinRate, &eval.ExpectedRRR, &eval.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &eval.ConfluenceFactors); err != nil {
			return nil, fmt.Errorf("unmarshal confluence factors: %w", err)
		}
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &eval.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
	}
	return eval, nil
}
