package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// ErrNotSent indicates a receive was recorded for an item that was never
// sent to a vendor.
var ErrNotSent = errors.New("item was not sent to outsourcing")

// MarkSent opens (or reopens) the outsourcing flow for an item: the request
// date is stamped and any previous receive date is cleared.
func (s *Store) MarkSent(ctx context.Context, qrData, outsourcer string) (models.UpsertResult, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM outsourcing WHERE qr_data = ?`, qrData).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO outsourcing (qr_data, outsourcer, request_date) VALUES (?, ?, ?)`,
			qrData, outsourcer, s.timestamp()); err != nil {
			return "", fmt.Errorf("insert outsourcing record: %w", err)
		}
		return models.ResultCreated, nil
	case err != nil:
		return "", fmt.Errorf("lookup outsourcing record: %w", err)
	default:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE outsourcing SET outsourcer = ?, request_date = ?, receive_date = NULL WHERE id = ?`,
			outsourcer, s.timestamp(), id); err != nil {
			return "", fmt.Errorf("update outsourcing record: %w", err)
		}
		return models.ResultUpdated, nil
	}
}

// MarkReceived stamps the receive date of an item that is out at a vendor.
func (s *Store) MarkReceived(ctx context.Context, qrData string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE outsourcing SET receive_date = ? WHERE qr_data = ? AND request_date IS NOT NULL`,
		s.timestamp(), qrData)
	if err != nil {
		return fmt.Errorf("mark outsourcing received: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outsourcing received: %w", err)
	}
	if affected == 0 {
		return ErrNotSent
	}
	return nil
}

// FindOutsourcingByPrefix returns outsourcing records whose identifier starts
// with the given prefix. Status filtering is the caller's concern.
func (s *Store) FindOutsourcingByPrefix(ctx context.Context, prefix string) ([]models.OutsourcingRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT qr_data, outsourcer, request_date, receive_date FROM outsourcing WHERE qr_data LIKE ? ESCAPE '\' ORDER BY id`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("scan outsourcing: %w", err)
	}
	defer rows.Close()

	var out []models.OutsourcingRecord
	for rows.Next() {
		var (
			rec        models.OutsourcingRecord
			outsourcer sql.NullString
			requested  sql.NullString
			received   sql.NullString
		)
		if err := rows.Scan(&rec.QRData, &outsourcer, &requested, &received); err != nil {
			return nil, fmt.Errorf("scan outsourcing row: %w", err)
		}
		rec.Outsourcer = outsourcer.String
		rec.RequestDate = nullableTime(requested)
		rec.ReceiveDate = nullableTime(received)
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outsourcing: %w", err)
	}
	return out, nil
}

// CountOutsourcingOn counts items sent and items received on the given day.
func (s *Store) CountOutsourcingOn(ctx context.Context, day time.Time) (sent, received int, err error) {
	pattern := day.Format("2006-01-02") + "%"
	if err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(CASE WHEN request_date LIKE ? THEN 1 END),
		COUNT(CASE WHEN receive_date LIKE ? THEN 1 END)
		FROM outsourcing`, pattern, pattern).Scan(&sent, &received); err != nil {
		return 0, 0, fmt.Errorf("count outsourcing activity: %w", err)
	}
	return sent, received, nil
}
