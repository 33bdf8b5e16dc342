package trace

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers "sqlite" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const maxSessions = 100

// Store persists trace data to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the trace database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trace open: %w", err)
	}
	// The sqlite driver serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session and prunes old ones.
func (s *Store) CreateSession(id, scenarioID, mode string) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, scenario_id, mode, started_at) VALUES (?, ?, ?, ?)`,
		id, scenarioID, mode, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`DELETE FROM sessions WHERE id NOT IN (SELECT id FROM sessions ORDER BY started_at DESC LIMIT ?)`,
		maxSessions,
	)
	return err
}

// EndSession sets the ended_at timestamp and final turn count.
func (s *Store) EndSession(id string, turnCount int) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ?, turn_count = ? WHERE id = ?`,
		time.Now().UTC(), turnCount, id,
	)
	return err
}

// CreateTurn inserts a new turn.
func (s *Store) CreateTurn(id, sessionID string, seq int) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (id, session_id, seq, started_at, status) VALUES (?, ?, ?, ?, 'running')`,
		id, sessionID, seq, time.Now().UTC(),
	)
	return err
}

// UpdateTurn sets the turn's final fields.
func (s *Store) UpdateTurn(id string, durationMs float64, status string) error {
	_, err := s.db.Exec(
		`UPDATE turns SET duration_ms = ?, status = ? WHERE id = ?`,
		durationMs, status, id,
	)
	return err
}

// CreateSpan inserts a span.
func (s *Store) CreateSpan(sp Span) error {
	_, err := s.db.Exec(
		`INSERT INTO spans (id, turn_id, name, started_at, duration_ms, status, error_msg)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.TurnID, sp.Name, sp.StartedAt.UTC(),
		sp.DurationMs, sp.Status, sp.Error,
	)
	return err
}

// ListSessions returns sessions ordered newest first, with turn counts.
func (s *Store) ListSessions(limit, offset int) ([]Session, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(`
		SELECT s.id, s.scenario_id, s.mode, s.started_at, s.ended_at, COUNT(t.id) as turn_count
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt sql.NullTime
		if err = rows.Scan(&sess.ID, &sess.ScenarioID, &sess.Mode, &sess.StartedAt, &endedAt, &sess.TurnCount); err != nil {
			return nil, 0, err
		}
		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, total, rows.Err()
}

// GetSession returns a single session with its turns.
func (s *Store) GetSession(id string) (*Session, []Turn, error) {
	var sess Session
	var endedAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, scenario_id, mode, started_at, ended_at, turn_count FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.ScenarioID, &sess.Mode, &sess.StartedAt, &endedAt, &sess.TurnCount)
	if err != nil {
		return nil, nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}

	rows, err := s.db.Query(`
		SELECT t.id, t.session_id, t.seq, t.started_at, t.duration_ms, t.status,
		       COUNT(sp.id) as span_count
		FROM turns t
		LEFT JOIN spans sp ON sp.turn_id = t.id
		WHERE t.session_id = ?
		GROUP BY t.id
		ORDER BY t.seq ASC
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err = rows.Scan(&t.ID, &t.SessionID, &t.Seq, &t.StartedAt, &t.DurationMs, &t.Status, &t.SpanCount); err != nil {
			return nil, nil, err
		}
		turns = append(turns, t)
	}
	return &sess, turns, rows.Err()
}

// GetTurn returns a single turn with its spans.
func (s *Store) GetTurn(sessionID, turnID string) (*Turn, []Span, error) {
	var t Turn
	err := s.db.QueryRow(
		`SELECT id, session_id, seq, started_at, duration_ms, status FROM turns WHERE id = ? AND session_id = ?`,
		turnID, sessionID,
	).Scan(&t.ID, &t.SessionID, &t.Seq, &t.StartedAt, &t.DurationMs, &t.Status)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, turn_id, name, started_at, duration_ms, status, error_msg FROM spans WHERE turn_id = ? ORDER BY started_at ASC`,
		turnID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var sp Span
		if err = rows.Scan(&sp.ID, &sp.TurnID, &sp.Name, &sp.StartedAt, &sp.DurationMs, &sp.Status, &sp.Error); err != nil {
			return nil, nil, err
		}
		spans = append(spans, sp)
	}
	return &t, spans, rows.Err()
}
