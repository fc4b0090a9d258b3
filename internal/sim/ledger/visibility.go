package ledger

// Visibility is how widely an event is known. It forms a lattice, not
// a line: REPORTED and RUMOR are reached from different starting
// conditions, and a victim's own knowledge is independent of whether a
// bystander happened to see anything. Promotion only, never back.
type Visibility string

const (
	// Private events are known to the actor alone.
	Private Visibility = "PRIVATE"
	// Witnessed events left at least one bystander with a vague memory.
	Witnessed Visibility = "WITNESSED"
	// Rumor means a witness (or the actor) talked; unconfirmed.
	Rumor Visibility = "RUMOR"
	// Reported events have a formal complaint on file.
	Reported Visibility = "REPORTED"
	// Public events are town-wide knowledge; the newspaper may print them.
	Public Visibility = "PUBLIC"
)

func (v Visibility) Valid() bool {
	switch v {
	case Private, Witnessed, Rumor, Reported, Public:
		return true
	}
	return false
}

// rank orders the lattice for monotonicity checks. Equal-or-higher
// rank never demotes even when two states are not directly comparable.
func rank(v Visibility) int {
	switch v {
	case Private:
		return 0
	case Witnessed:
		return 1
	case Rumor:
		return 2
	case Reported:
		return 3
	case Public:
		return 4
	}
	return -1
}

// AllowedNext enumerates the legal direct transitions out of a state.
// Any state may jump straight to REPORTED or PUBLIC; PRIVATE and
// WITNESSED may each independently advance to RUMOR.
func AllowedNext(v Visibility) []Visibility {
	switch v {
	case Private:
		return []Visibility{Witnessed, Rumor, Reported, Public}
	case Witnessed:
		return []Visibility{Rumor, Reported, Public}
	case Rumor:
		return []Visibility{Reported, Public}
	case Reported:
		return []Visibility{Public}
	case Public:
		return nil
	}
	return nil
}

// CanPromote reports whether from → to is a legal transition.
func CanPromote(from, to Visibility) bool {
	for _, n := range AllowedNext(from) {
		if n == to {
			return true
		}
	}
	return false
}

// promotableTo lists the states from which `to` is reachable. Store
// updates guard on this set so an illegal caller attempt is a silent
// no-op rather than a demotion.
func promotableTo(to Visibility) []string {
	var out []string
	for _, from := range []Visibility{Private, Witnessed, Rumor, Reported} {
		if CanPromote(from, to) {
			out = append(out, string(from))
		}
	}
	return out
}
