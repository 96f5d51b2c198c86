package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pawdue/pawdue/internal/domain/dogs"
)

// SQLiteStore implements the Store interface using a local SQLite database.
// The agent binary uses it as its authoritative store.
type SQLiteStore struct {
	db *sqlx.DB
}

// migration is a single versioned schema step.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order on open.
//
//nolint:gochecknoglobals // Static schema definition.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS dogs (
				id       TEXT PRIMARY KEY,
				name     TEXT NOT NULL,
				position INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS reminders (
				id              TEXT PRIMARY KEY,
				dog_id          TEXT NOT NULL REFERENCES dogs(id) ON DELETE CASCADE,
				action_kind     TEXT NOT NULL,
				custom_name     TEXT NOT NULL DEFAULT '',
				kind            TEXT NOT NULL,
				is_enabled      INTEGER NOT NULL,
				execution_basis TIMESTAMP NOT NULL,
				components      TEXT NOT NULL,
				position        INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS logs (
				id          TEXT PRIMARY KEY,
				dog_id      TEXT NOT NULL REFERENCES dogs(id) ON DELETE CASCADE,
				action_kind TEXT NOT NULL,
				custom_name TEXT NOT NULL DEFAULT '',
				date        TIMESTAMP NOT NULL,
				note        TEXT NOT NULL DEFAULT ''
			);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
}

// reminderComponents is the JSON shape of the per-kind component bags.
// Only the bag matching the reminder's kind is authoritative; the others
// round-trip untouched.
type reminderComponents struct {
	Countdown dogs.CountdownComponents `json:"countdown"`
	Snooze    dogs.SnoozeComponents    `json:"snooze"`
	Weekly    dogs.WeeklyComponents    `json:"weekly"`
	Monthly   dogs.MonthlyComponents   `json:"monthly"`
	OneTime   dogs.OneTimeComponents   `json:"oneTime"`
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode and foreign keys, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", filepath.Clean(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// WAL keeps concurrent reads cheap.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int

	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertDog inserts or replaces a dog row, preserving its position.
func (s *SQLiteStore) UpsertDog(ctx context.Context, d *dogs.Dog) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	position, err := s.rowPosition(ctx, "dogs", d.ID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO dogs (id, name, position) VALUES (?, ?, ?)",
		d.ID, d.Name, position,
	)
	if err != nil {
		return fmt.Errorf("upsert dog %s: %w", d.ID, err)
	}

	for _, r := range d.Reminders {
		if err := s.UpdateReminder(ctx, d.ID, r); err != nil {
			return err
		}
	}

	for _, l := range d.Logs {
		if _, err := s.CreateLog(ctx, d.ID, l); err != nil {
			return err
		}
	}

	return nil
}

// FetchDogs loads the whole collection in insertion order.
func (s *SQLiteStore) FetchDogs(ctx context.Context) (*dogs.Manager, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT id, name FROM dogs ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query dogs: %w", err)
	}
	defer rows.Close()

	manager := new(dogs.Manager)

	for rows.Next() {
		d := new(dogs.Dog)
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan dog row: %w", err)
		}

		manager.AddDog(d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dogs: %w", err)
	}

	for _, d := range manager.Dogs {
		if d.Reminders, err = s.fetchReminders(ctx, d.ID); err != nil {
			return nil, err
		}

		if d.Logs, err = s.fetchLogs(ctx, d.ID); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

// FetchReminder loads a single reminder, returning (nil, nil) when absent.
func (s *SQLiteStore) FetchReminder(ctx context.Context, dogID, reminderID string) (*dogs.Reminder, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT id, dog_id, action_kind, custom_name, kind, is_enabled, execution_basis, components "+
			"FROM reminders WHERE id = ? AND dog_id = ?",
		reminderID, dogID,
	)

	r, err := scanReminder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetch reminder %s: %w", reminderID, err)
	}

	return r, nil
}

// UpdateReminder inserts or replaces a reminder row.
// The local-only presentation flag is not persisted.
func (s *SQLiteStore) UpdateReminder(ctx context.Context, dogID string, reminder *dogs.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}

	components, err := json.Marshal(reminderComponents{
		Countdown: reminder.Countdown,
		Snooze:    reminder.Snooze,
		Weekly:    reminder.Weekly,
		Monthly:   reminder.Monthly,
		OneTime:   reminder.OneTime,
	})
	if err != nil {
		return fmt.Errorf("marshal components for reminder %s: %w", reminder.ID, err)
	}

	position, err := s.rowPosition(ctx, "reminders", reminder.ID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reminders (
			id, dog_id, action_kind, custom_name, kind,
			is_enabled, execution_basis, components, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, dogID, string(reminder.Action.Kind), reminder.Action.CustomName,
		string(reminder.Kind), boolToInt(reminder.IsEnabled),
		reminder.ExecutionBasis.UTC(), string(components), position,
	)
	if err != nil {
		return fmt.Errorf("upsert reminder %s: %w", reminder.ID, err)
	}

	return nil
}

// DeleteReminder removes a reminder row. Deleting an absent row succeeds,
// matching remote idempotency.
func (s *SQLiteStore) DeleteReminder(ctx context.Context, dogID, reminderID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE id = ? AND dog_id = ?", reminderID, dogID,
	)
	if err != nil {
		return fmt.Errorf("delete reminder %s: %w", reminderID, err)
	}

	return nil
}

// CreateLog inserts a log row, assigning an id when empty, and returns the id.
func (s *SQLiteStore) CreateLog(ctx context.Context, dogID string, log *dogs.Log) (string, error) {
	id := log.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO logs (id, dog_id, action_kind, custom_name, date, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, dogID, string(log.Action.Kind), log.Action.CustomName, log.Date.UTC(), log.Note,
	)
	if err != nil {
		return "", fmt.Errorf("create log: %w", err)
	}

	return id, nil
}

// DeleteLog removes a log row. Deleting an absent row succeeds.
func (s *SQLiteStore) DeleteLog(ctx context.Context, dogID, logID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM logs WHERE id = ? AND dog_id = ?", logID, dogID,
	)
	if err != nil {
		return fmt.Errorf("delete log %s: %w", logID, err)
	}

	return nil
}

// fetchReminders loads a dog's reminders in insertion order.
func (s *SQLiteStore) fetchReminders(ctx context.Context, dogID string) ([]*dogs.Reminder, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, dog_id, action_kind, custom_name, kind, is_enabled, execution_basis, components "+
			"FROM reminders WHERE dog_id = ? ORDER BY position",
		dogID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*dogs.Reminder

	for rows.Next() {
		r, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reminder row: %w", err)
		}

		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}

// fetchLogs loads a dog's logs ordered by date.
func (s *SQLiteStore) fetchLogs(ctx context.Context, dogID string) ([]*dogs.Log, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, dog_id, action_kind, custom_name, date, note FROM logs WHERE dog_id = ? ORDER BY date",
		dogID,
	)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var logs []*dogs.Log

	for rows.Next() {
		var (
			l          dogs.Log
			actionKind string
			date       time.Time
		)

		err := rows.Scan(&l.ID, &l.DogID, &actionKind, &l.Action.CustomName, &date, &l.Note)
		if err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}

		l.Action.Kind = dogs.ActionKind(actionKind)
		l.Date = date

		logs = append(logs, &l)
	}

	return logs, rows.Err()
}

// rowPosition returns the existing position of the row, or max+1 for new rows.
func (s *SQLiteStore) rowPosition(ctx context.Context, table, id string) (int, error) {
	var position int

	err := s.db.GetContext(ctx, &position,
		"SELECT position FROM "+table+" WHERE id = ?", id, //nolint:gosec // Table name is a compile-time constant.
	)
	if err == nil {
		return position, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read position in %s: %w", table, err)
	}

	err = s.db.GetContext(ctx, &position,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM "+table) //nolint:gosec // Table name is a compile-time constant.
	if err != nil {
		return 0, fmt.Errorf("next position in %s: %w", table, err)
	}

	return position, nil
}

// scanReminder scans a reminder row via the provided scan function.
func scanReminder(scan func(dest ...any) error) (*dogs.Reminder, error) {
	var (
		r          dogs.Reminder
		actionKind string
		kind       string
		enabled    int
		basis      time.Time
		components string
	)

	err := scan(&r.ID, &r.DogID, &actionKind, &r.Action.CustomName, &kind, &enabled, &basis, &components)
	if err != nil {
		return nil, err
	}

	r.Action.Kind = dogs.ActionKind(actionKind)
	r.Kind = dogs.Kind(kind)
	r.IsEnabled = enabled != 0
	r.ExecutionBasis = basis

	var bags reminderComponents
	if err := json.Unmarshal([]byte(components), &bags); err != nil {
		return nil, fmt.Errorf("unmarshal components: %w", err)
	}

	r.Countdown = bags.Countdown
	r.Snooze = bags.Snooze
	r.Weekly = bags.Weekly
	r.Monthly = bags.Monthly
	r.OneTime = bags.OneTime

	return &r, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
