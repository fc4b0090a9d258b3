package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the durable keyed record store shared by the ledger, the
// case manager, and the concealment registry. One authoritative
// process advances the simulation, so a single connection with
// synchronous reads is both sufficient and required: every step of a
// tick must see the writes of the previous step.
type Store struct {
	db      *sql.DB
	journal Journal
}

// Journal receives a copy of every event insert and every case
// transition the store performs. Writes are best effort; a journal
// must never fail the simulation.
type Journal interface {
	JournalEvent(day int, e Event)
	JournalCase(day int, c Case)
}

// SetJournal attaches a journal. Pass nil to detach.
func (s *Store) SetJournal(j Journal) { s.journal = j }

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day INTEGER NOT NULL,
			kind TEXT NOT NULL,
			actor TEXT NOT NULL,
			target TEXT NOT NULL DEFAULT '',
			asset TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			visibility TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_visibility_day ON events(visibility, day);`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor_day ON events(actor, day);`,
		`CREATE INDEX IF NOT EXISTS idx_events_target_day ON events(target, day);`,
		`CREATE TABLE IF NOT EXISTS event_witnesses (
			event_id INTEGER NOT NULL REFERENCES events(id),
			name TEXT NOT NULL,
			PRIMARY KEY (event_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_witnesses_name ON event_witnesses(name);`,
		`CREATE TABLE IF NOT EXISTS event_evidence (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id),
			day INTEGER NOT NULL,
			kind TEXT NOT NULL,
			note TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_event ON event_evidence(event_id);`,
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id),
			day_opened INTEGER NOT NULL,
			day_closed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'open',
			complainant TEXT NOT NULL,
			complaint TEXT NOT NULL,
			resolution TEXT NOT NULL DEFAULT '',
			closing_report TEXT NOT NULL DEFAULT '',
			convicted TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_complainant ON cases(complainant);`,
		`CREATE INDEX IF NOT EXISTS idx_cases_event ON cases(event_id);`,
		`CREATE TABLE IF NOT EXISTS case_notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER NOT NULL REFERENCES cases(id),
			day INTEGER NOT NULL,
			note TEXT NOT NULL,
			suspect TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_case_notes_case ON case_notes(case_id);`,
		`CREATE TABLE IF NOT EXISTS case_suspects (
			case_id INTEGER NOT NULL REFERENCES cases(id),
			name TEXT NOT NULL,
			PRIMARY KEY (case_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			leader TEXT NOT NULL,
			day_formed INTEGER NOT NULL,
			total_crimes INTEGER NOT NULL DEFAULT 0,
			known_to_authorities INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active'
		);`,
		`CREATE INDEX IF NOT EXISTS idx_groups_leader ON groups(leader);`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER NOT NULL REFERENCES groups(id),
			name TEXT NOT NULL,
			PRIMARY KEY (group_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_name ON group_members(name);`,
		`CREATE TABLE IF NOT EXISTS recollections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent TEXT NOT NULL,
			day INTEGER NOT NULL,
			kind TEXT NOT NULL,
			text TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_recollections_agent_day ON recollections(agent, day);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
