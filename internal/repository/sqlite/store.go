package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the workshop SQLite database: one ledger table per station plus
// the operator registry and the outsourcing table.
type Store struct {
	db       *sql.DB
	registry *models.StationRegistry
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore opens (or creates) the database and ensures the schema for every
// registered station exists.
func NewStore(path string, registry *models.StationRegistry, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{
		db:       db,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	fixed := []string{
		`CREATE TABLE IF NOT EXISTS users (
			telegram_id INTEGER PRIMARY KEY,
			full_name   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_creation_dates (
			telegram_id INTEGER PRIMARY KEY,
			created_at  TEXT NOT NULL,
			FOREIGN KEY (telegram_id) REFERENCES users (telegram_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS outsourcing (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			qr_data      TEXT NOT NULL UNIQUE,
			outsourcer   TEXT,
			request_date TEXT,
			receive_date TEXT
		)`,
	}

	for _, stmt := range fixed {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	for _, st := range s.registry.Stations() {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			qr_data           TEXT NOT NULL,
			creation_date     TEXT NOT NULL,
			modification_date TEXT,
			telegram_id       INTEGER,
			FOREIGN KEY (telegram_id) REFERENCES users (telegram_id) ON DELETE CASCADE
		)`, st.Table)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create ledger table %s: %w", st.Table, err)
		}
		s.logger.Debug("ledger table ready", zap.String("station", st.Name), zap.String("table", st.Table))
	}

	return nil
}

// Registry exposes the ordered station set this store was built around.
func (s *Store) Registry() *models.StationRegistry {
	return s.registry
}

func (s *Store) timestamp() string {
	return s.now().Format(models.TimestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(models.TimestampLayout, raw)
}

func nullableTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := parseTimestamp(v.String)
	if err != nil {
		return nil
	}
	return &t
}

// escapeLike neutralizes LIKE wildcards so user identifiers match literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
