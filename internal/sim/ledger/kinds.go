package ledger

import "fmt"

// Kind enumerates what an event is. The set is closed: Record rejects
// unknown kinds, and each kind declares which fields it requires and
// which initial visibility a caller may assert for it.
type Kind string

const (
	KindTheft        Kind = "theft"
	KindAssault      Kind = "assault"
	KindBribe        Kind = "bribe"
	KindBlackmail    Kind = "blackmail"
	KindSabotage     Kind = "sabotage"
	KindArrest       Kind = "arrest"
	KindBirth        Kind = "birth"
	KindDeath        Kind = "death"
	KindVerdict      Kind = "verdict"
	KindGroupFormed  Kind = "group_formed"
	KindGroupExposed Kind = "group_exposed"
	KindGroupBroken  Kind = "group_broken"
	KindWelfare      Kind = "welfare"
)

type kindRule struct {
	needsTarget bool
	// initial visibilities a caller is authorized to assert
	initial []Visibility
	// complaintable kinds can anchor a victim complaint
	complaintable bool
}

var kindRules = map[Kind]kindRule{
	KindTheft:     {needsTarget: true, initial: []Visibility{Private}, complaintable: true},
	KindAssault:   {needsTarget: true, initial: []Visibility{Private}, complaintable: true},
	KindBribe:     {needsTarget: true, initial: []Visibility{Private}},
	KindBlackmail: {needsTarget: true, initial: []Visibility{Private}, complaintable: true},
	KindSabotage:  {needsTarget: true, initial: []Visibility{Private}, complaintable: true},

	KindArrest:  {needsTarget: true, initial: []Visibility{Reported}},
	KindVerdict: {needsTarget: true, initial: []Visibility{Public}},

	KindBirth:   {initial: []Visibility{Public}},
	KindDeath:   {initial: []Visibility{Public}},
	KindWelfare: {initial: []Visibility{Public}},

	KindGroupFormed:  {initial: []Visibility{Private}},
	KindGroupExposed: {initial: []Visibility{Rumor}},
	KindGroupBroken:  {initial: []Visibility{Public}},
}

func (k Kind) Valid() bool {
	_, ok := kindRules[k]
	return ok
}

// DefaultVisibility is the visibility a kind starts at when the caller
// does not assert one. Unknown kinds get the empty visibility, which
// Record rejects.
func DefaultVisibility(k Kind) Visibility {
	rule, ok := kindRules[k]
	if !ok || len(rule.initial) == 0 {
		return ""
	}
	return rule.initial[0]
}

// ComplaintKinds are the event kinds a victim can take to the
// authorities.
func ComplaintKinds() []Kind {
	return []Kind{KindTheft, KindAssault, KindBlackmail, KindSabotage}
}

// validateRecord checks a new event against its kind's rule before it
// is ever written.
func validateRecord(kind Kind, actor, target string, vis Visibility) error {
	rule, ok := kindRules[kind]
	if !ok {
		return fmt.Errorf("unknown event kind %q", kind)
	}
	if actor == "" {
		return fmt.Errorf("%s: missing actor", kind)
	}
	if rule.needsTarget && target == "" {
		return fmt.Errorf("%s: missing target", kind)
	}
	if !vis.Valid() {
		return fmt.Errorf("%s: invalid visibility %q", kind, vis)
	}
	for _, v := range rule.initial {
		if v == vis {
			return nil
		}
	}
	return fmt.Errorf("%s: caller may not assert initial visibility %s", kind, vis)
}
