package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// UpsertObservation inserts a fresh ledger row for the item at the station,
// or stamps the modification date when the item was already seen there.
// Exactly one row in one table is touched.
func (s *Store) UpsertObservation(ctx context.Context, station models.Station, qrData string, observerID int64) (models.UpsertResult, error) {
	var id int64
	query := fmt.Sprintf(`SELECT id FROM %q WHERE qr_data = ?`, station.Table)
	err := s.db.QueryRowContext(ctx, query, qrData).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := fmt.Sprintf(`INSERT INTO %q (qr_data, creation_date, telegram_id) VALUES (?, ?, ?)`, station.Table)
		if _, err := s.db.ExecContext(ctx, insert, qrData, s.timestamp(), observerID); err != nil {
			return "", fmt.Errorf("insert into %s: %w", station.Table, err)
		}
		return models.ResultCreated, nil
	case err != nil:
		return "", fmt.Errorf("lookup in %s: %w", station.Table, err)
	default:
		update := fmt.Sprintf(`UPDATE %q SET modification_date = ?, telegram_id = ? WHERE id = ?`, station.Table)
		if _, err := s.db.ExecContext(ctx, update, s.timestamp(), observerID, id); err != nil {
			return "", fmt.Errorf("update in %s: %w", station.Table, err)
		}
		return models.ResultUpdated, nil
	}
}

// FindByPrefix returns the station's observations whose identifier starts
// with the given prefix, oldest first.
func (s *Store) FindByPrefix(ctx context.Context, station models.Station, prefix string) ([]models.Observation, error) {
	query := fmt.Sprintf(
		`SELECT qr_data, telegram_id, creation_date, modification_date FROM %q WHERE qr_data LIKE ? ESCAPE '\' ORDER BY id`,
		station.Table)

	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", station.Table, err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var (
			obs      models.Observation
			observer sql.NullInt64
			created  string
			modified sql.NullString
		)
		if err := rows.Scan(&obs.QRData, &observer, &created, &modified); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", station.Table, err)
		}

		createdAt, err := parseTimestamp(created)
		if err != nil {
			s.logger.Warn("skipping row with malformed creation date",
				zap.String("table", station.Table), zap.String("value", created))
			continue
		}
		obs.CreatedAt = createdAt
		obs.ModifiedAt = nullableTime(modified)
		if observer.Valid {
			obs.ObserverID = observer.Int64
		}
		out = append(out, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", station.Table, err)
	}
	return out, nil
}

// CountActivityOn counts rows first created and rows re-stamped on the given
// calendar day, used by the daily summary.
func (s *Store) CountActivityOn(ctx context.Context, station models.Station, day time.Time) (created, updated int, err error) {
	pattern := day.Format("2006-01-02") + "%"

	query := fmt.Sprintf(`SELECT
		COUNT(CASE WHEN creation_date LIKE ? THEN 1 END),
		COUNT(CASE WHEN modification_date LIKE ? THEN 1 END)
		FROM %q`, station.Table)

	if err := s.db.QueryRowContext(ctx, query, pattern, pattern).Scan(&created, &updated); err != nil {
		return 0, 0, fmt.Errorf("count activity in %s: %w", station.Table, err)
	}
	return created, updated, nil
}
