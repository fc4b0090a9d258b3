package ledger

import "ashvale.town/internal/persistence/store"

// Clearance-filtered queries. Each consumer sees exactly what its
// clearance allows, enforced here rather than by caller convention.

// EvidenceForInvestigator returns what the authorities can legally
// work with: REPORTED and PUBLIC events, plus WITNESSED ones (someone
// saw something, even if nobody filed). PRIVATE and RUMOR-only events
// never appear. Empty filter arguments are no constraint.
func (l *Ledger) EvidenceForInvestigator(suspect, target string, kind Kind, sinceDay int) []store.Event {
	f := store.EventFilter{
		Visibilities: []string{string(Reported), string(Public), string(Witnessed)},
		Participant:  suspect,
		Target:       target,
		Kind:         string(kind),
		SinceDay:     sinceDay,
		Limit:        l.tune.EvidenceLimit,
	}
	out, err := l.st.Events(f)
	if err != nil {
		l.log.Printf("ledger: investigator query failed: %v", err)
		return nil
	}
	return out
}

// PublicEvents is the newspaper's entire world: PUBLIC only. The
// paper is always behind the truth.
func (l *Ledger) PublicEvents(sinceDay int) []store.Event {
	out, err := l.st.Events(store.EventFilter{
		Visibilities: []string{string(Public)},
		SinceDay:     sinceDay,
		Limit:        l.tune.EvidenceLimit,
	})
	if err != nil {
		l.log.Printf("ledger: public events query failed: %v", err)
		return nil
	}
	return out
}

// EventsKnownTo is one citizen's view: events they are actor, target,
// or witness of, plus town-wide REPORTED/PUBLIC knowledge. This is
// what the orchestrator injects into a citizen's decision context.
func (l *Ledger) EventsKnownTo(agent string, sinceDay int) []store.Event {
	out, err := l.st.EventsKnownTo(agent, sinceDay, 20)
	if err != nil {
		l.log.Printf("ledger: known-to query for %s failed: %v", agent, err)
		return nil
	}
	return out
}

// CrimesAgainst drives victim self-discovery: hidden events targeting
// one citizen that they may now want to report. The victim learns that
// something happened, not who did it.
func (l *Ledger) CrimesAgainst(target string, kind Kind, sinceDay int) []store.Event {
	out, err := l.st.Events(store.EventFilter{
		Visibilities: []string{string(Private), string(Witnessed), string(Rumor)},
		Target:       target,
		Kind:         string(kind),
		SinceDay:     sinceDay,
		Limit:        5,
	})
	if err != nil {
		l.log.Printf("ledger: crimes-against query for %s failed: %v", target, err)
		return nil
	}
	return out
}

// UnreportedComplaints lists targeted crimes still below REPORTED
// with no case on file; complaint intake rolls each victim against
// these.
func (l *Ledger) UnreportedComplaints(sinceDay int) []store.Event {
	kinds := make([]string, 0, len(ComplaintKinds()))
	for _, k := range ComplaintKinds() {
		kinds = append(kinds, string(k))
	}
	out, err := l.st.UnreportedCrimeEvents(kinds, sinceDay)
	if err != nil {
		l.log.Printf("ledger: unreported complaints query failed: %v", err)
		return nil
	}
	return out
}
