package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ezppt/deckview/internal/db"
	"github.com/ezppt/deckview/internal/viewer"
)

// Store records slide saves in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a new entry. If entry.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSaved
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO save_journal (id, session_id, project, file, bytes, outcome, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.Project,
		entry.File,
		entry.Bytes,
		string(entry.Outcome),
		entry.Message,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// RecordSave implements viewer.SaveRecorder. Journal failures are logged and
// never fail the save itself.
func (s *Store) RecordSave(ctx context.Context, a viewer.SaveAttempt) {
	entry := Entry{
		SessionID: a.SessionID,
		Project:   a.Project,
		File:      a.File,
		Bytes:     a.Bytes,
		Outcome:   OutcomeSaved,
	}
	if a.Err != nil {
		entry.Outcome = OutcomeFailed
		entry.Message = viewer.ErrorText(a.Err)
	}
	// The request context may already be cancelled when the client left.
	if err := s.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("journal: %v", err)
	}
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, session_id, project, file, bytes, outcome, message
		FROM save_journal WHERE id = ?`, id)
	return scanInto(row)
}

// Filter controls which entries Query returns.
type Filter struct {
	Project string
	File    string
	Outcome Outcome
	Since   *time.Time
	Limit   int
	Offset  int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Project != "" {
		clauses = append(clauses, "project = ?")
		args = append(args, filter.Project)
	}
	if filter.File != "" {
		clauses = append(clauses, "file = ?")
		args = append(args, filter.File)
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, session_id, project, file, bytes, outcome, message FROM save_journal"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes entries older than before and returns how many were
// deleted.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM save_journal WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old journal entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e       Entry
		ts      string
		outcome string
	)
	err := sc.Scan(&e.ID, &ts, &e.SessionID, &e.Project, &e.File, &e.Bytes, &outcome, &e.Message)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("journal entry not found")
	}
	if err != nil {
		return nil, err
	}
	e.Outcome = Outcome(outcome)

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	}
	return &e, nil
}
