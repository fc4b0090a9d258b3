package ledger

import (
	"fmt"
	"log"
	"math/rand"

	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/tuning"
)

// SentinelID is returned by Record when the write failed. Every other
// ledger operation treats it as "event does not exist".
const SentinelID int64 = -1

// Recollector receives the vague witness fragments. The orchestrator
// owns the real store; tests inject a fake.
type Recollector interface {
	Remember(agent, text, kind string, day int) error
}

// Ledger is the town's hidden record of everything that happens, with
// the visibility appropriate to how secret it was. It never deletes
// and never demotes.
type Ledger struct {
	st   *store.Store
	rec  Recollector
	tune tuning.Tuning
	rng  *rand.Rand
	log  *log.Logger
}

func New(st *store.Store, rec Recollector, tune tuning.Tuning, rng *rand.Rand, logger *log.Logger) *Ledger {
	return &Ledger{st: st, rec: rec, tune: tune, rng: rng, log: logger}
}

// Record appends a new event and returns its id. Covert acts start
// PRIVATE, institutional facts PUBLIC, inherently public acts like an
// arrest REPORTED; anything else is rejected. Never panics; returns
// SentinelID on validation or storage failure.
func (l *Ledger) Record(day int, kind Kind, actor, target, asset, description string, vis Visibility) int64 {
	if err := validateRecord(kind, actor, target, vis); err != nil {
		l.log.Printf("ledger: record rejected: %v", err)
		return SentinelID
	}
	id, err := l.st.InsertEvent(store.Event{
		Day:         day,
		Kind:        string(kind),
		Actor:       actor,
		Target:      target,
		Asset:       asset,
		Description: description,
		Visibility:  string(vis),
	})
	if err != nil {
		l.log.Printf("ledger: record %s by %s failed: %v", kind, actor, err)
		return SentinelID
	}
	return id
}

// RollWitnesses flips a weighted coin for every living candidate other
// than the actor and target. Hits join the witness set and, if the
// event is still PRIVATE, promote it to WITNESSED; the promotion is a
// single guarded update, so repeated hits cannot double-promote. Each
// new witness gets a vague kind-flavored fragment in their private
// recollections, never the ground truth.
func (l *Ledger) RollWitnesses(eventID int64, candidates []roster.Citizen, actor, target string, chance float64) {
	if eventID == SentinelID {
		return
	}
	var hits []string
	for _, c := range candidates {
		if c.Name == actor || c.Name == target {
			continue
		}
		if !c.Alive() {
			continue
		}
		if l.rng.Float64() < chance {
			hits = append(hits, c.Name)
		}
	}
	if len(hits) == 0 {
		return
	}

	ev, ok, err := l.st.GetEvent(eventID)
	if err != nil || !ok {
		l.log.Printf("ledger: roll witnesses for #%d: missing event (err=%v)", eventID, err)
		return
	}

	if _, err := l.st.PromoteEvent(eventID, string(Witnessed), []string{string(Private)}); err != nil {
		l.log.Printf("ledger: promote #%d to WITNESSED failed: %v", eventID, err)
		return
	}
	if err := l.st.AddWitnesses(eventID, hits); err != nil {
		l.log.Printf("ledger: add witnesses to #%d failed: %v", eventID, err)
		return
	}
	for _, name := range hits {
		frag := l.witnessFragment(Kind(ev.Kind), ev.Actor, ev.Target)
		text := fmt.Sprintf("Day %d: %s", ev.Day, frag)
		if err := l.rec.Remember(name, text, "observation", ev.Day); err != nil {
			l.log.Printf("ledger: recollection for %s failed: %v", name, err)
		}
	}
}

// FileReport formally reports an event, promoting it to REPORTED.
// Returns false if the event does not exist; a PUBLIC event is left
// untouched and reported as success; the knowledge is already out.
func (l *Ledger) FileReport(eventID int64, reporter string, day int) bool {
	if eventID == SentinelID {
		return false
	}
	_, ok, err := l.st.GetEvent(eventID)
	if err != nil {
		l.log.Printf("ledger: file report on #%d failed: %v", eventID, err)
		return false
	}
	if !ok {
		return false
	}
	if _, err := l.st.PromoteEvent(eventID, string(Reported), promotableTo(Reported)); err != nil {
		l.log.Printf("ledger: file report on #%d failed: %v", eventID, err)
		return false
	}
	if err := l.st.AppendEvidence(eventID, store.Evidence{
		Day:  day,
		Kind: "report",
		Note: fmt.Sprintf("reported by %s on day %d", reporter, day),
	}); err != nil {
		l.log.Printf("ledger: evidence on #%d failed: %v", eventID, err)
	}
	return true
}

// MakePublic promotes an event to PUBLIC unconditionally. Idempotent;
// a second call on an already-PUBLIC event changes nothing.
func (l *Ledger) MakePublic(eventID int64, reason string) {
	if eventID == SentinelID {
		return
	}
	changed, err := l.st.PromoteEvent(eventID, string(Public), promotableTo(Public))
	if err != nil {
		l.log.Printf("ledger: make public #%d failed: %v", eventID, err)
		return
	}
	if !changed {
		return
	}
	if err := l.st.AppendEvidence(eventID, store.Evidence{
		Kind: "public",
		Note: "made public: " + reason,
	}); err != nil {
		l.log.Printf("ledger: evidence on #%d failed: %v", eventID, err)
	}
}

// SpreadRumor records that someone talked. PRIVATE and WITNESSED
// advance to RUMOR; everything else is a no-op with no trail written.
func (l *Ledger) SpreadRumor(eventID int64, from, to string, day int) {
	if eventID == SentinelID {
		return
	}
	changed, err := l.st.PromoteEvent(eventID, string(Rumor), []string{string(Private), string(Witnessed)})
	if err != nil {
		l.log.Printf("ledger: spread rumor on #%d failed: %v", eventID, err)
		return
	}
	if !changed {
		return
	}
	if err := l.st.AppendEvidence(eventID, store.Evidence{
		Day:  day,
		Kind: "rumor",
		Note: fmt.Sprintf("%s told %s on day %d", from, to, day),
	}); err != nil {
		l.log.Printf("ledger: evidence on #%d failed: %v", eventID, err)
	}
}

// Get exposes a single event; used by the case manager to anchor
// complaints and by the admin CLI.
func (l *Ledger) Get(eventID int64) (store.Event, bool) {
	ev, ok, err := l.st.GetEvent(eventID)
	if err != nil {
		l.log.Printf("ledger: get #%d failed: %v", eventID, err)
		return store.Event{}, false
	}
	return ev, ok
}
