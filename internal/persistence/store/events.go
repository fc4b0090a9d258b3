package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Event is the persisted form of a ledger entry. Everything but the
// visibility and the append-only witness/evidence trails is immutable
// once inserted.
type Event struct {
	ID          int64
	Day         int
	Kind        string
	Actor       string
	Target      string
	Asset       string
	Description string
	Visibility  string
	Witnesses   []string
	Evidence    []Evidence
}

// Evidence is one entry of an event's append-only trail.
type Evidence struct {
	Day  int    `json:"day"`
	Kind string `json:"kind"`
	Note string `json:"note"`
}

func (s *Store) InsertEvent(e Event) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO events(day,kind,actor,target,asset,description,visibility)
		 VALUES(?,?,?,?,?,?,?)`,
		e.Day, e.Kind, e.Actor, e.Target, e.Asset, e.Description, e.Visibility,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if s.journal != nil {
		e.ID = id
		s.journal.JournalEvent(e.Day, e)
	}
	return id, nil
}

func (s *Store) GetEvent(id int64) (Event, bool, error) {
	var e Event
	row := s.db.QueryRow(
		`SELECT id,day,kind,actor,target,asset,description,visibility FROM events WHERE id=?`, id)
	err := row.Scan(&e.ID, &e.Day, &e.Kind, &e.Actor, &e.Target, &e.Asset, &e.Description, &e.Visibility)
	if err == sql.ErrNoRows {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}
	if e.Witnesses, err = s.eventWitnesses(id); err != nil {
		return Event{}, false, err
	}
	if e.Evidence, err = s.eventEvidence(id); err != nil {
		return Event{}, false, err
	}
	return e, true, nil
}

// PromoteEvent moves an event's visibility to `to`, but only if it
// currently sits in one of the `from` states. The guard runs inside
// the UPDATE itself so two logical promotions can never race past the
// lattice. Returns whether a row actually changed.
func (s *Store) PromoteEvent(id int64, to string, from []string) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := make([]any, 0, len(from)+2)
	args = append(args, to)
	args = append(args, id)
	for _, f := range from {
		args = append(args, f)
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE events SET visibility=? WHERE id=? AND visibility IN (%s)`, ph),
		args...,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) AddWitnesses(id int64, names []string) error {
	for _, n := range names {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO event_witnesses(event_id,name) VALUES(?,?)`, id, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AppendEvidence(id int64, ev Evidence) error {
	_, err := s.db.Exec(
		`INSERT INTO event_evidence(event_id,day,kind,note) VALUES(?,?,?,?)`,
		id, ev.Day, ev.Kind, ev.Note)
	return err
}

// EventFilter composes the WHERE clause for Events. Zero values mean
// "no constraint".
type EventFilter struct {
	Visibilities []string
	Participant  string // actor OR target
	Target       string
	Kind         string
	Kinds        []string
	SinceDay     int
	Limit        int
	Asc          bool
}

func (s *Store) Events(f EventFilter) ([]Event, error) {
	conds := []string{"day >= ?"}
	args := []any{f.SinceDay}

	if len(f.Visibilities) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(f.Visibilities)), ",")
		conds = append(conds, fmt.Sprintf("visibility IN (%s)", ph))
		for _, v := range f.Visibilities {
			args = append(args, v)
		}
	}
	if f.Participant != "" {
		conds = append(conds, "(actor = ? OR target = ?)")
		args = append(args, f.Participant, f.Participant)
	}
	if f.Target != "" {
		conds = append(conds, "target = ?")
		args = append(args, f.Target)
	}
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, f.Kind)
	}
	if len(f.Kinds) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(f.Kinds)), ",")
		conds = append(conds, fmt.Sprintf("kind IN (%s)", ph))
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}

	order := "DESC"
	if f.Asc {
		order = "ASC"
	}
	q := fmt.Sprintf(
		`SELECT id,day,kind,actor,target,asset,description,visibility
		 FROM events WHERE %s ORDER BY day %s, id %s`,
		strings.Join(conds, " AND "), order, order)
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	return s.scanEvents(q, args...)
}

// EventsKnownTo returns what one agent can legitimately know: events
// they are actor, target, or witness of, plus everything REPORTED or
// PUBLIC.
func (s *Store) EventsKnownTo(agent string, sinceDay, limit int) ([]Event, error) {
	q := `SELECT e.id,e.day,e.kind,e.actor,e.target,e.asset,e.description,e.visibility
	      FROM events e
	      WHERE e.day >= ? AND (
	          e.actor = ? OR e.target = ?
	          OR EXISTS (SELECT 1 FROM event_witnesses w WHERE w.event_id = e.id AND w.name = ?)
	          OR e.visibility IN ('REPORTED','PUBLIC')
	      )
	      ORDER BY e.day DESC, e.id DESC`
	args := []any{sinceDay, agent, agent, agent}
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.scanEvents(q, args...)
}

// UnreportedCrimeEvents returns targeted events still below REPORTED
// that no case references yet; the complaint intake picks from these.
func (s *Store) UnreportedCrimeEvents(kinds []string, sinceDay int) ([]Event, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(kinds)), ",")
	q := fmt.Sprintf(
		`SELECT e.id,e.day,e.kind,e.actor,e.target,e.asset,e.description,e.visibility
		 FROM events e
		 LEFT JOIN cases c ON c.event_id = e.id
		 WHERE e.kind IN (%s)
		   AND e.target != ''
		   AND e.visibility IN ('PRIVATE','WITNESSED','RUMOR')
		   AND e.day >= ?
		   AND c.id IS NULL
		 ORDER BY e.day ASC, e.id ASC`, ph)
	args := make([]any, 0, len(kinds)+1)
	for _, k := range kinds {
		args = append(args, k)
	}
	args = append(args, sinceDay)
	return s.scanEvents(q, args...)
}

func (s *Store) scanEvents(q string, args ...any) ([]Event, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Day, &e.Kind, &e.Actor, &e.Target, &e.Asset, &e.Description, &e.Visibility); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Witnesses, err = s.eventWitnesses(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) eventWitnesses(id int64) ([]string, error) {
	// rowid preserves the order witnesses were attached in.
	rows, err := s.db.Query(`SELECT name FROM event_witnesses WHERE event_id=? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) eventEvidence(id int64) ([]Evidence, error) {
	rows, err := s.db.Query(`SELECT day,kind,note FROM event_evidence WHERE event_id=? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Evidence
	for rows.Next() {
		var ev Evidence
		if err := rows.Scan(&ev.Day, &ev.Kind, &ev.Note); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
