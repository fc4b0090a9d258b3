package ledger

import (
	"testing"

	"ashvale.town/internal/persistence/store"
)

func TestInvestigatorClearance(t *testing.T) {
	l, _, _ := newTestLedger(t)

	private := l.Record(1, KindTheft, "Ivo", "Mara", "", "hidden theft", Private)
	witnessed := l.Record(1, KindTheft, "Ivo", "Oren", "", "seen theft", Private)
	l.RollWitnesses(witnessed, alive("Tessa"), "Ivo", "Oren", 1.0)
	rumored := l.Record(1, KindTheft, "Ivo", "Wren", "", "whispered theft", Private)
	l.SpreadRumor(rumored, "Tessa", "Oren", 2)
	reported := l.Record(1, KindTheft, "Ivo", "Bram", "", "reported theft", Private)
	l.FileReport(reported, "Bram", 2)
	public := l.Record(1, KindVerdict, "Judge", "Ivo", "", "verdict", Public)

	got := l.EvidenceForInvestigator("", "", "", 0)
	want := map[int64]bool{witnessed: true, reported: true, public: true}
	if len(got) != len(want) {
		t.Fatalf("investigator sees %d events, want %d: %+v", len(got), len(want), got)
	}
	for _, e := range got {
		if !want[e.ID] {
			t.Fatalf("investigator saw event #%d with visibility %s", e.ID, e.Visibility)
		}
		if e.Visibility == string(Private) || e.Visibility == string(Rumor) {
			t.Fatalf("clearance breach: %s", e.Visibility)
		}
	}
	_ = private
}

func TestPublicEventsOnly(t *testing.T) {
	l, _, _ := newTestLedger(t)
	l.Record(1, KindTheft, "Ivo", "Mara", "", "theft", Private)
	pub := l.Record(1, KindBirth, "Mara", "", "", "a child is born", Public)

	got := l.PublicEvents(0)
	if len(got) != 1 || got[0].ID != pub {
		t.Fatalf("public query: %+v", got)
	}
}

func TestEventsKnownTo(t *testing.T) {
	l, _, _ := newTestLedger(t)

	mine := l.Record(1, KindTheft, "Ivo", "Mara", "", "theft on Mara", Private)
	seen := l.Record(1, KindTheft, "Ivo", "Oren", "", "theft on Oren", Private)
	l.RollWitnesses(seen, alive("Tessa"), "Ivo", "Oren", 1.0)
	hidden := l.Record(1, KindTheft, "Ivo", "Wren", "", "theft on Wren", Private)
	reported := l.Record(1, KindTheft, "Ivo", "Bram", "", "theft on Bram", Private)
	l.FileReport(reported, "Bram", 2)

	known := l.EventsKnownTo("Mara", 0)
	ids := map[int64]bool{}
	for _, e := range known {
		ids[e.ID] = true
	}
	if !ids[mine] {
		t.Fatalf("victim doesn't know their own event")
	}
	if !ids[reported] {
		t.Fatalf("REPORTED events are town-wide knowledge")
	}
	if ids[hidden] || ids[seen] {
		t.Fatalf("Mara knows events she has no part in: %v", ids)
	}

	// The witness knows what they saw.
	known = l.EventsKnownTo("Tessa", 0)
	found := false
	for _, e := range known {
		if e.ID == seen {
			found = true
		}
		if e.ID == hidden {
			t.Fatalf("witness knows an unwitnessed PRIVATE event")
		}
	}
	if !found {
		t.Fatalf("witness doesn't know the witnessed event")
	}
}

func TestCrimesAgainstSelfDiscovery(t *testing.T) {
	l, _, _ := newTestLedger(t)

	recent := l.Record(5, KindTheft, "Ivo", "Mara", "", "recent theft", Private)
	l.Record(1, KindTheft, "Ivo", "Mara", "", "old theft", Private)
	reported := l.Record(5, KindTheft, "Ivo", "Mara", "", "already reported", Private)
	l.FileReport(reported, "Mara", 5)

	got := l.CrimesAgainst("Mara", KindTheft, 3)
	if len(got) != 1 || got[0].ID != recent {
		t.Fatalf("self-discovery: %+v", got)
	}
}

func TestUnreportedComplaints(t *testing.T) {
	l, st, _ := newTestLedger(t)

	ev := l.Record(2, KindTheft, "Ivo", "Mara", "", "theft", Private)
	briber := l.Record(2, KindBribe, "Ivo", "Bram", "", "bribe", Private)

	got := l.UnreportedComplaints(0)
	if len(got) != 1 || got[0].ID != ev {
		t.Fatalf("unreported complaints: %+v", got)
	}
	_ = briber // bribes are not complaintable; nobody files on their own bribe

	// Once a case exists the event disappears from intake.
	if _, err := st.InsertCase(store.Case{EventID: ev, DayOpened: 3, Complainant: "Mara", Complaint: "stolen"}); err != nil {
		t.Fatalf("insert case: %v", err)
	}
	if got := l.UnreportedComplaints(0); len(got) != 0 {
		t.Fatalf("event with a case still offered for intake: %+v", got)
	}
}
