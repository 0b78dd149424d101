// Package sqlite stores sessions in a SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Cyclone1070/codeagent/internal/session"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	document   BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const currentKey = "current"

// Store keeps each session as a YAML document in one row. AUTOINCREMENT keeps ids
// from being reused after a delete.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	locks *session.Locks

	mu sync.Mutex // serialises create, switch and delete
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writers from racing each other for the file lock
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now, locks: session.NewLocks()}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new session, archives the others and makes it current.
func (s *Store) Create(workDir string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO sessions (status, created_at, updated_at, document) VALUES (?, ?, ?, ?)",
		string(session.StatusActive), formatTime(now), formatTime(now), []byte{},
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	sess := session.New(uint64(rowID), workDir, now)
	sess.Normalize()
	doc, err := yaml.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session %d: %w", sess.ID, err)
	}
	if _, err := tx.Exec("UPDATE sessions SET document = ? WHERE id = ?", doc, rowID); err != nil {
		return nil, fmt.Errorf("write session %d: %w", sess.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	if err := s.activate(sess.ID); err != nil {
		return nil, err
	}
	log.Info().Uint64("session_id", sess.ID).Str("op", "create").Msg("session created")
	return sess, nil
}

// List returns a summary of every session ordered by id.
func (s *Store) List() ([]session.Summary, error) {
	current, err := s.currentID()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT id FROM sessions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]session.Summary, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, sess.Summarize(id == current))
	}
	return out, nil
}

// Switch makes id current and archives the others.
func (s *Store) Switch(id uint64) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Load(id); err != nil {
		return nil, err
	}
	if err := s.activate(id); err != nil {
		return nil, err
	}
	log.Info().Uint64("session_id", id).Str("op", "switch").Msg("session switched")
	return s.Load(id)
}

// Delete removes a session.
func (s *Store) Delete(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := s.locks.For(id)
	lock.Lock()
	res, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &session.NotFoundError{ID: id}
	}

	if _, err := s.db.Exec("DELETE FROM meta WHERE key = ? AND value = ?", currentKey, strconv.FormatUint(id, 10)); err != nil {
		return fmt.Errorf("clear current session: %w", err)
	}
	log.Info().Uint64("session_id", id).Str("op", "delete").Msg("session deleted")
	return nil
}

// Save stamps UpdatedAt and replaces the stored document.
func (s *Store) Save(sess *session.Session) error {
	if sess == nil || sess.ID == 0 {
		return fmt.Errorf("save: session has no id")
	}
	lock := s.locks.For(sess.ID)
	lock.Lock()
	defer lock.Unlock()

	sess.UpdatedAt = s.now()
	sess.Normalize()
	doc, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sess.ID, err)
	}
	res, err := s.db.Exec(
		"UPDATE sessions SET status = ?, updated_at = ?, document = ? WHERE id = ?",
		string(sess.Status), formatTime(sess.UpdatedAt), doc, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("write session %d: %w", sess.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &session.NotFoundError{ID: sess.ID}
	}
	return nil
}

// Load reads a session by id.
func (s *Store) Load(id uint64) (*session.Session, error) {
	lock := s.locks.For(id)
	lock.RLock()
	defer lock.RUnlock()

	var doc []byte
	err := s.db.QueryRow("SELECT document FROM sessions WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &session.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("read session %d: %w", id, err)
	}

	var sess session.Session
	if err := yaml.Unmarshal(doc, &sess); err != nil {
		return nil, &session.CorruptError{Path: fmt.Sprintf("sessions/%d", id), Cause: err}
	}
	return &sess, nil
}

// Current returns the current session, or session.ErrNotFound when none is set.
func (s *Store) Current() (*session.Session, error) {
	id, err := s.currentID()
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, session.ErrNotFound
	}
	return s.Load(id)
}

// Restore returns the current session, creating one when there is none.
func (s *Store) Restore(workDir string) (*session.Session, error) {
	return session.RestoreOrCreate(s, workDir)
}

// activate marks id active and the others archived, then records id as current.
// Callers hold s.mu.
func (s *Store) activate(id uint64) error {
	rows, err := s.db.Query("SELECT id FROM sessions WHERE (status = ? AND id != ?) OR (status != ? AND id = ?)",
		string(session.StatusActive), id, string(session.StatusActive), id)
	if err != nil {
		return fmt.Errorf("find sessions to update: %w", err)
	}
	var stale []uint64
	for rows.Next() {
		var other uint64
		if err := rows.Scan(&other); err != nil {
			rows.Close()
			return fmt.Errorf("find sessions to update: %w", err)
		}
		stale = append(stale, other)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("find sessions to update: %w", err)
	}

	for _, other := range stale {
		sess, err := s.Load(other)
		if err != nil {
			return err
		}
		sess.Status = session.StatusArchived
		if other == id {
			sess.Status = session.StatusActive
		}
		if err := s.Save(sess); err != nil {
			return err
		}
	}

	_, err = s.db.Exec("INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		currentKey, strconv.FormatUint(id, 10))
	if err != nil {
		return fmt.Errorf("set current session: %w", err)
	}
	return nil
}

func (s *Store) currentID() (uint64, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", currentKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read current session: %w", err)
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("read current session: %w", err)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
