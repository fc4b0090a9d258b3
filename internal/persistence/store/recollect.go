package store

import "fmt"

// Recollection is one private memory fragment held by a citizen. The
// ledger writes vague templated fragments here for witnesses; the
// orchestrator injects them into that citizen's decision context.
type Recollection struct {
	Agent string
	Day   int
	Kind  string
	Text  string
}

func (s *Store) Remember(agent, text, kind string, day int) error {
	_, err := s.db.Exec(
		`INSERT INTO recollections(agent,day,kind,text) VALUES(?,?,?,?)`,
		agent, day, kind, text)
	return err
}

func (s *Store) Recollections(agent string, limit int) ([]Recollection, error) {
	q := `SELECT agent,day,kind,text FROM recollections WHERE agent=? ORDER BY day DESC, id DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(q, agent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recollection
	for rows.Next() {
		var r Recollection
		if err := rows.Scan(&r.Agent, &r.Day, &r.Kind, &r.Text); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
