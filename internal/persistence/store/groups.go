package store

import "database/sql"

type Group struct {
	ID                 int64
	Name               string
	Leader             string
	DayFormed          int
	TotalCrimes        int
	KnownToAuthorities bool
	Status             string
	Members            []string
}

func (s *Store) InsertGroup(g Group) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO groups(name,leader,day_formed) VALUES(?,?,?)`,
		g.Name, g.Leader, g.DayFormed)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, m := range g.Members {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO group_members(group_id,name) VALUES(?,?)`, id, m); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// ActiveGroupOf returns the active group a citizen belongs to, if any.
// A citizen is in at most one active group.
func (s *Store) ActiveGroupOf(member string) (Group, bool, error) {
	row := s.db.QueryRow(
		`SELECT g.id,g.name,g.leader,g.day_formed,g.total_crimes,g.known_to_authorities,g.status
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.name = ? AND g.status = 'active'
		 LIMIT 1`, member)
	return s.scanGroup(row)
}

func (s *Store) ActiveGroupLedBy(leader string) (Group, bool, error) {
	row := s.db.QueryRow(
		`SELECT id,name,leader,day_formed,total_crimes,known_to_authorities,status
		 FROM groups WHERE leader = ? AND status = 'active' LIMIT 1`, leader)
	return s.scanGroup(row)
}

func (s *Store) SetGroupKnown(id int64) error {
	_, err := s.db.Exec(`UPDATE groups SET known_to_authorities=1 WHERE id=?`, id)
	return err
}

func (s *Store) BreakGroupsLedBy(leader string) error {
	_, err := s.db.Exec(`UPDATE groups SET status='broken' WHERE leader=? AND status='active'`, leader)
	return err
}

func (s *Store) IncrementGroupCrimes(leader string) error {
	_, err := s.db.Exec(
		`UPDATE groups SET total_crimes = total_crimes + 1 WHERE leader=? AND status='active'`, leader)
	return err
}

func (s *Store) ActiveGroups() ([]Group, error) {
	rows, err := s.db.Query(
		`SELECT id,name,leader,day_formed,total_crimes,known_to_authorities,status
		 FROM groups WHERE status='active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		var known int
		if err := rows.Scan(&g.ID, &g.Name, &g.Leader, &g.DayFormed, &g.TotalCrimes, &known, &g.Status); err != nil {
			return nil, err
		}
		g.KnownToAuthorities = known != 0
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Members, err = s.groupMembers(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) scanGroup(row *sql.Row) (Group, bool, error) {
	var g Group
	var known int
	err := row.Scan(&g.ID, &g.Name, &g.Leader, &g.DayFormed, &g.TotalCrimes, &known, &g.Status)
	if err == sql.ErrNoRows {
		return Group{}, false, nil
	}
	if err != nil {
		return Group{}, false, err
	}
	g.KnownToAuthorities = known != 0
	if g.Members, err = s.groupMembers(g.ID); err != nil {
		return Group{}, false, err
	}
	return g, true, nil
}

func (s *Store) groupMembers(id int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM group_members WHERE group_id=? ORDER BY name`, id)
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
