package store

import (
	"database/sql"
	"fmt"
)

type Case struct {
	ID            int64
	EventID       int64
	DayOpened     int
	DayClosed     int // 0 while open
	Status        string
	Complainant   string
	Complaint     string
	Resolution    string
	ClosingReport string
	Convicted     string
	Suspects      []string
	Notes         []CaseNote
}

type CaseNote struct {
	Day        int     `json:"day"`
	Note       string  `json:"note"`
	Suspect    string  `json:"suspect,omitempty"`
	Confidence float64 `json:"confidence"`
}

func (s *Store) InsertCase(c Case) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO cases(event_id,day_opened,complainant,complaint) VALUES(?,?,?,?)`,
		c.EventID, c.DayOpened, c.Complainant, c.Complaint)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if s.journal != nil {
		c.ID = id
		c.Status = "open"
		s.journal.JournalCase(c.DayOpened, c)
	}
	return id, nil
}

func (s *Store) GetCase(id int64) (Case, bool, error) {
	row := s.db.QueryRow(
		`SELECT id,event_id,day_opened,day_closed,status,complainant,complaint,resolution,closing_report,convicted
		 FROM cases WHERE id=?`, id)
	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return Case{}, false, nil
	}
	if err != nil {
		return Case{}, false, err
	}
	if err := s.loadCaseTrails(&c); err != nil {
		return Case{}, false, err
	}
	return c, true, nil
}

func (s *Store) OpenCases() ([]Case, error) {
	rows, err := s.db.Query(
		`SELECT id,event_id,day_opened,day_closed,status,complainant,complaint,resolution,closing_report,convicted
		 FROM cases WHERE status='open' ORDER BY day_opened ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadCaseTrails(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) AppendCaseNote(id int64, n CaseNote) error {
	_, err := s.db.Exec(
		`INSERT INTO case_notes(case_id,day,note,suspect,confidence) VALUES(?,?,?,?,?)`,
		id, n.Day, n.Note, n.Suspect, n.Confidence)
	return err
}

func (s *Store) AddSuspect(id int64, name string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO case_suspects(case_id,name) VALUES(?,?)`, id, name)
	return err
}

// CloseCase moves an open case to a terminal status. The status guard
// lives in the UPDATE so a case already solved or cold is a clean
// no-op.
func (s *Store) CloseCase(id int64, status, resolution, report, convicted string, day int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE cases SET status=?, resolution=?, closing_report=?, convicted=?, day_closed=?
		 WHERE id=? AND status='open'`,
		status, resolution, report, convicted, day, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if s.journal != nil {
		s.journal.JournalCase(day, Case{
			ID:            id,
			DayClosed:     day,
			Status:        status,
			Resolution:    resolution,
			ClosingReport: report,
			Convicted:     convicted,
		})
	}
	return true, nil
}

// ReopenCase flips a cold case back to open. The status guard lives
// in the UPDATE so any other state is a clean no-op.
func (s *Store) ReopenCase(id int64, day int) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE cases SET status='open', day_closed=0, resolution='', closing_report=''
		 WHERE id=? AND status='cold'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if s.journal != nil {
		s.journal.JournalCase(day, Case{ID: id, Status: "open"})
	}
	return true, nil
}

func (s *Store) HasCaseForEvent(eventID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM cases WHERE event_id=?`, eventID).Scan(&n)
	return n > 0, err
}

// CountConvictions counts prior solved cases against one citizen; the
// judge weighs repeat offenders.
func (s *Store) CountConvictions(name string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM cases WHERE status='solved' AND convicted=?`, name).Scan(&n)
	return n, err
}

func (s *Store) CaseSummaries(limit int) ([]Case, error) {
	q := `SELECT id,event_id,day_opened,day_closed,status,complainant,complaint,resolution,closing_report,convicted
	      FROM cases ORDER BY day_opened DESC, id DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCase(r rowScanner) (Case, error) {
	var c Case
	err := r.Scan(&c.ID, &c.EventID, &c.DayOpened, &c.DayClosed, &c.Status,
		&c.Complainant, &c.Complaint, &c.Resolution, &c.ClosingReport, &c.Convicted)
	return c, err
}

func (s *Store) loadCaseTrails(c *Case) error {
	rows, err := s.db.Query(
		`SELECT day,note,suspect,confidence FROM case_notes WHERE case_id=? ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var n CaseNote
		if err := rows.Scan(&n.Day, &n.Note, &n.Suspect, &n.Confidence); err != nil {
			return err
		}
		c.Notes = append(c.Notes, n)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	srows, err := s.db.Query(`SELECT name FROM case_suspects WHERE case_id=? ORDER BY name`, c.ID)
	if err != nil {
		return err
	}
	defer srows.Close()
	for srows.Next() {
		var n string
		if err := srows.Scan(&n); err != nil {
			return err
		}
		c.Suspects = append(c.Suspects, n)
	}
	return srows.Err()
}
