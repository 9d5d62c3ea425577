package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/vizor/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-20000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// DB returns the underlying *sql.DB for advanced usage (e.g. render log).
func (s *LibSQLStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// --- Diagrams ---

func (s *LibSQLStore) SaveDiagram(ctx context.Context, d *Diagram) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diagrams (id, title, diagram_type, renderer, markup, svg, theme, syntax_error, session_id, created_at, rendered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, diagram_type=excluded.diagram_type, renderer=excluded.renderer,
		   markup=excluded.markup, svg=excluded.svg, theme=excluded.theme,
		   syntax_error=excluded.syntax_error, rendered_at=excluded.rendered_at`,
		d.ID, nullStr(d.Title), string(d.DiagramType), string(d.Backend), d.Markup,
		nullBytes(d.SVG), string(d.Theme), nullStr(d.SyntaxError), nullStr(d.SessionID),
		timeOrNow(d.CreatedAt), nullTime(d.RenderedAt),
	)
	return err
}

func (s *LibSQLStore) GetDiagram(ctx context.Context, id string) (*Diagram, error) {
	d := &Diagram{}
	var (
		title, syntaxErr, sessionID sql.NullString
		svg                         []byte
		diagramType, renderer       string
		theme                       string
		renderedAt                  sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, diagram_type, renderer, markup, svg, theme, syntax_error, session_id, created_at, rendered_at
		 FROM diagrams WHERE id = ?`, id,
	).Scan(&d.ID, &title, &diagramType, &renderer, &d.Markup, &svg, &theme, &syntaxErr, &sessionID, &d.CreatedAt, &renderedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("diagram", id)
	}
	if err != nil {
		return nil, err
	}
	d.Title = title.String
	d.DiagramType = schema.DiagramType(diagramType)
	d.Backend = schema.Backend(renderer)
	d.SVG = svg
	d.Theme = schema.Theme(theme)
	d.SyntaxError = syntaxErr.String
	d.SessionID = sessionID.String
	if renderedAt.Valid {
		d.RenderedAt = &renderedAt.Time
	}
	return d, nil
}

func (s *LibSQLStore) UpdateDiagram(ctx context.Context, id string, update DiagramUpdate) error {
	var sets []string
	var args []any

	if update.SVG != nil {
		sets = append(sets, "svg = ?")
		args = append(args, update.SVG)
	}
	if update.Theme != nil {
		sets = append(sets, "theme = ?")
		args = append(args, string(*update.Theme))
	}
	if update.SyntaxError != nil {
		sets = append(sets, "syntax_error = ?")
		args = append(args, nullStr(*update.SyntaxError))
	}
	if update.RenderedAt != nil {
		sets = append(sets, "rendered_at = ?")
		args = append(args, *update.RenderedAt)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE diagrams SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "diagram", id)
}

func (s *LibSQLStore) ListDiagrams(ctx context.Context, filter DiagramFilter) ([]*Diagram, error) {
	var where []string
	var args []any

	if filter.DiagramType != "" {
		where = append(where, "diagram_type = ?")
		args = append(args, string(filter.DiagramType))
	}
	if filter.Backend != "" {
		where = append(where, "renderer = ?")
		args = append(args, string(filter.Backend))
	}
	if filter.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *filter.Since)
	}

	query := `SELECT id, title, diagram_type, renderer, markup, svg, theme, syntax_error, session_id, created_at, rendered_at FROM diagrams`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagrams []*Diagram
	for rows.Next() {
		d := &Diagram{}
		var (
			title, syntaxErr, sessionID sql.NullString
			svg                         []byte
			diagramType, renderer       string
			theme                       string
			renderedAt                  sql.NullTime
		)
		if err := rows.Scan(&d.ID, &title, &diagramType, &renderer, &d.Markup, &svg, &theme, &syntaxErr, &sessionID, &d.CreatedAt, &renderedAt); err != nil {
			return nil, err
		}
		d.Title = title.String
		d.DiagramType = schema.DiagramType(diagramType)
		d.Backend = schema.Backend(renderer)
		d.SVG = svg
		d.Theme = schema.Theme(theme)
		d.SyntaxError = syntaxErr.String
		d.SessionID = sessionID.String
		if renderedAt.Valid {
			d.RenderedAt = &renderedAt.Time
		}
		diagrams = append(diagrams, d)
	}
	return diagrams, rows.Err()
}

func (s *LibSQLStore) DeleteDiagram(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "diagram", id)
}

// --- Render log ---

func (s *LibSQLStore) AppendRenderEvent(ctx context.Context, event *RenderEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Acquire the write lock up front so sequence read and insert cannot
	// interleave with a concurrent appender.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version, name) VALUES (-1, '_lock_noop')`); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schema_version WHERE version = -1`); err != nil {
		return fmt.Errorf("cleanup write lock: %w", err)
	}

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM render_events WHERE diagram_id = ?`, event.DiagramID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("get next sequence: %w", err)
	}
	event.Sequence = seq

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO render_events (diagram_id, event_type, payload, timestamp, sequence)
		 VALUES (?, ?, ?, ?, ?)`,
		event.DiagramID, event.Type, nullRaw(event.Payload), event.Timestamp, seq,
	)
	if err != nil {
		return fmt.Errorf("insert render event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit render event: %w", err)
	}
	return nil
}

func (s *LibSQLStore) GetRenderEvents(ctx context.Context, diagramID string, since int64) ([]*RenderEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, diagram_id, event_type, payload, timestamp, sequence
		 FROM render_events WHERE diagram_id = ? AND sequence > ?
		 ORDER BY sequence ASC`, diagramID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*RenderEvent
	for rows.Next() {
		e := &RenderEvent{}
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.DiagramID, &e.Type, &payload, &e.Timestamp, &e.Sequence); err != nil {
			return nil, err
		}
		e.Payload = rawOrNil(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Retention ---

// PruneBefore deletes diagrams created before the cutoff and returns
// the number of rows removed. Render events cascade with their diagram.
func (s *LibSQLStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Helpers ---

func storeNotFound(resource, id string) *schema.VizorError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullRaw(r []byte) any {
	if len(r) == 0 {
		return nil
	}
	return string(r)
}

func rawOrNil(ns sql.NullString) []byte {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return []byte(ns.String)
}
