package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// DBPath is the index location relative to the project root.
const DBPath = ".roadmap/index.db"

// Index is the SQLite-backed event index.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database under root.
// Idempotent; safe to call before every rebuild.
func Open(root string) (*Index, error) {
	path := filepath.Join(root, filepath.FromSlash(DBPath))
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect index: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Rebuild replaces the index contents with the given events in one
// transaction. Callers pass the output of store.Parse, so the index
// only ever reflects a log that validated end to end.
func (ix *Index) Rebuild(ctx context.Context, events []model.Event) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (event_seq, event_id, ts, actor, action, task_id, issue_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		payload, err := model.CanonicalJSON(event.Payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", event.EventID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			event.EventSeq, event.EventID, event.TS, event.Actor, event.Action,
			nullable(model.StringField(event.Payload, "task_id")),
			nullable(model.StringField(event.Payload, "issue_id")),
			string(payload),
		); err != nil {
			return fmt.Errorf("insert %s: %w", event.EventID, err)
		}
	}
	return tx.Commit()
}

// Entry is one indexed event row.
type Entry struct {
	EventSeq int64  `json:"event_seq"`
	EventID  string `json:"event_id"`
	TS       string `json:"ts"`
	Actor    string `json:"actor"`
	Action   string `json:"action"`
	TaskID   string `json:"task_id,omitempty"`
	IssueID  string `json:"issue_id,omitempty"`
}

// ByTask returns all events touching a task, in sequence order.
func (ix *Index) ByTask(ctx context.Context, taskID string) ([]Entry, error) {
	return ix.query(ctx, "task_id = ?", taskID)
}

// ByActor returns all events emitted by an actor, in sequence order.
func (ix *Index) ByActor(ctx context.Context, actor string) ([]Entry, error) {
	return ix.query(ctx, "actor = ?", actor)
}

// ByAction returns all events with the given action, in sequence order.
func (ix *Index) ByAction(ctx context.Context, action string) ([]Entry, error) {
	return ix.query(ctx, "action = ?", action)
}

func (ix *Index) query(ctx context.Context, where string, arg any) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT event_seq, event_id, ts, actor, action,
		       COALESCE(task_id, ''), COALESCE(issue_id, '')
		FROM events WHERE `+where+` ORDER BY event_seq`, arg)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EventSeq, &e.EventID, &e.TS, &e.Actor, &e.Action, &e.TaskID, &e.IssueID); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RebuildFromStore parses the log under root and refills the index.
func RebuildFromStore(ctx context.Context, root string) (*Index, int, error) {
	events, err := store.Parse(root)
	if err != nil {
		return nil, 0, err
	}
	ix, err := Open(root)
	if err != nil {
		return nil, 0, err
	}
	if err := ix.Rebuild(ctx, events); err != nil {
		ix.Close()
		return nil, 0, err
	}
	return ix, len(events), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
