// Package underworld manages the town's hidden criminal
// organizations. A group's existence is itself a PRIVATE ledger entry;
// the town only ever learns of it through arrests, rumor, and the
// collapse that follows a leader's conviction.
package underworld

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/tuning"
)

// Group names lean quiet and ominous, not cartoonish.
var groupNames = []string{
	"The Briar", "Iron Candle", "The Greylight", "Ash Circle",
	"The Quiet Hand", "Black Fen", "The Unspoken", "Low Tide",
	"The Tarnished", "Night Loom",
}

type Registry struct {
	st   *store.Store
	led  *ledger.Ledger
	tune tuning.Tuning
	rng  *rand.Rand
	log  *log.Logger
}

func New(st *store.Store, led *ledger.Ledger, tune tuning.Tuning, rng *rand.Rand, logger *log.Logger) *Registry {
	return &Registry{st: st, led: led, tune: tune, rng: rng, log: logger}
}

// Formation describes one newly formed group; the orchestrator
// forwards these to the observer feed.
type Formation struct {
	GroupID int64
	Name    string
	Leader  string
	Members []string
	Day     int
}

// CheckFormation gives each living, groupless citizen in a criminal
// role a daily shot at recruiting. Recruits must be living, groupless,
// sufficiently distressed, and not in a protected role; the most
// desperate are taken first. Formation is all-or-nothing at the
// configured minimum size and leaves a PRIVATE group-formed event;
// nobody knows yet.
func (r *Registry) CheckFormation(day int, citizens []roster.Citizen) []Formation {
	var out []Formation

	for _, c := range citizens {
		if !c.Alive() || !roster.Criminal(c.Role) {
			continue
		}
		if r.inActiveGroup(c.Name) {
			continue
		}
		if r.rng.Float64() > r.tune.FormationChance {
			continue
		}

		var recruits []roster.Citizen
		for _, cand := range citizens {
			if !cand.Alive() || cand.Name == c.Name {
				continue
			}
			if cand.Distress >= r.tune.DistressThreshold {
				continue
			}
			if roster.Protected(cand.Role) {
				continue
			}
			if r.inActiveGroup(cand.Name) {
				continue
			}
			recruits = append(recruits, cand)
		}
		if len(recruits) < r.tune.MinGroupSize-1 {
			continue
		}

		sort.Slice(recruits, func(i, j int) bool { return recruits[i].Distress < recruits[j].Distress })
		chosen := recruits[:r.tune.MinGroupSize-1]

		members := make([]string, 0, r.tune.MinGroupSize)
		members = append(members, c.Name)
		for _, rc := range chosen {
			members = append(members, rc.Name)
		}

		name := r.pickName()
		id, err := r.st.InsertGroup(store.Group{
			Name:      name,
			Leader:    c.Name,
			DayFormed: day,
			Members:   members,
		})
		if err != nil {
			r.log.Printf("underworld: form group for %s failed: %v", c.Name, err)
			continue
		}

		r.led.Record(day, ledger.KindGroupFormed, c.Name, "", "",
			fmt.Sprintf("%s formed a hidden group called %s with %d recruited member(s).",
				c.Name, name, len(members)-1),
			ledger.Private)

		r.log.Printf("underworld: %s formed %s on day %d (members: %v)", c.Name, name, day, members)
		out = append(out, Formation{GroupID: id, Name: name, Leader: c.Name, Members: members, Day: day})
	}

	return out
}

// CoordinationBonus is the proceeds multiplier for coordinated crime.
// The economy applies it; the registry only answers membership.
func (r *Registry) CoordinationBonus(agent string) float64 {
	g, ok, err := r.st.ActiveGroupOf(agent)
	if err != nil {
		r.log.Printf("underworld: bonus lookup for %s failed: %v", agent, err)
		return 1.0
	}
	if !ok {
		return 1.0
	}
	if g.Leader == agent {
		return r.tune.LeaderBonus
	}
	return r.tune.MemberBonus
}

// RecordCrime bumps the cumulative counter of the group led by the
// given citizen after a coordinated crime.
func (r *Registry) RecordCrime(leader string) {
	if err := r.st.IncrementGroupCrimes(leader); err != nil {
		r.log.Printf("underworld: record crime for %s failed: %v", leader, err)
	}
}

// ExposeOnArrest rolls whether an arrested member talks under
// questioning. If they do, the group becomes known to the authorities
// and a RUMOR group-exposed event gives the constable a lead. Returns
// the group name when exposed.
func (r *Registry) ExposeOnArrest(arrested string, day int) (string, bool) {
	g, ok, err := r.st.ActiveGroupOf(arrested)
	if err != nil {
		r.log.Printf("underworld: expose lookup for %s failed: %v", arrested, err)
		return "", false
	}
	if !ok {
		return "", false
	}
	if r.rng.Float64() >= r.tune.TalkChance {
		return "", false
	}

	if err := r.st.SetGroupKnown(g.ID); err != nil {
		r.log.Printf("underworld: mark %s known failed: %v", g.Name, err)
		return "", false
	}
	r.led.Record(day, ledger.KindGroupExposed, arrested, "", "",
		fmt.Sprintf("%s revealed the existence of %s under questioning. Leader: %s.",
			arrested, g.Name, g.Leader),
		ledger.Rumor)
	r.log.Printf("underworld: %s talked, %s is known to the authorities", arrested, g.Name)
	return g.Name, true
}

// BreakGroup collapses the group led by a convicted citizen and logs
// it PUBLIC; the collapse of an organization is town news.
func (r *Registry) BreakGroup(leader string, day int) {
	g, ok, err := r.st.ActiveGroupLedBy(leader)
	if err != nil {
		r.log.Printf("underworld: break lookup for %s failed: %v", leader, err)
		return
	}
	if !ok {
		return
	}
	if err := r.st.BreakGroupsLedBy(leader); err != nil {
		r.log.Printf("underworld: break %s failed: %v", g.Name, err)
		return
	}
	r.led.Record(day, ledger.KindGroupBroken, leader, "", "",
		fmt.Sprintf("The group led by %s has collapsed after their conviction.", leader),
		ledger.Public)
	r.log.Printf("underworld: %s broken on day %d", g.Name, day)
}

func (r *Registry) ActiveGroups() []store.Group {
	gs, err := r.st.ActiveGroups()
	if err != nil {
		r.log.Printf("underworld: active groups query failed: %v", err)
		return nil
	}
	return gs
}

func (r *Registry) inActiveGroup(name string) bool {
	_, ok, err := r.st.ActiveGroupOf(name)
	if err != nil {
		r.log.Printf("underworld: membership lookup for %s failed: %v", name, err)
		return false
	}
	return ok
}

func (r *Registry) pickName() string {
	taken := map[string]bool{}
	for _, g := range r.ActiveGroups() {
		taken[g.Name] = true
	}
	name := groupNames[r.rng.Intn(len(groupNames))]
	for attempts := 0; taken[name] && attempts < len(groupNames); attempts++ {
		name = groupNames[r.rng.Intn(len(groupNames))]
	}
	return name
}
