package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// GetOperator loads a registered operator by telegram id.
func (s *Store) GetOperator(ctx context.Context, telegramID int64) (models.Operator, error) {
	var op models.Operator
	err := s.db.QueryRowContext(ctx,
		`SELECT telegram_id, full_name FROM users WHERE telegram_id = ?`, telegramID).
		Scan(&op.TelegramID, &op.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Operator{}, ErrNotFound
	}
	if err != nil {
		return models.Operator{}, fmt.Errorf("lookup operator %d: %w", telegramID, err)
	}
	return op, nil
}

// RegisterOperator stores the operator once. The full name is immutable: a
// second registration for the same id is a no-op.
func (s *Store) RegisterOperator(ctx context.Context, op models.Operator) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (telegram_id, full_name) VALUES (?, ?)`,
		op.TelegramID, op.FullName); err != nil {
		return fmt.Errorf("register operator %d: %w", op.TelegramID, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_creation_dates (telegram_id, created_at) VALUES (?, ?)`,
		op.TelegramID, s.timestamp()); err != nil {
		return fmt.Errorf("record registration date for %d: %w", op.TelegramID, err)
	}

	return nil
}

// OperatorName resolves the display name for ledger rendering, falling back
// to "-" for unknown or unset observers.
func (s *Store) OperatorName(ctx context.Context, telegramID int64) string {
	if telegramID == 0 {
		return "-"
	}
	op, err := s.GetOperator(ctx, telegramID)
	if err != nil {
		return "-"
	}
	return op.FullName
}
