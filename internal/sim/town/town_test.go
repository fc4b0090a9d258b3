package town

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/chronicle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/tuning"
)

type fakeTokens struct {
	from, to string
	amount   int
}

func (f *fakeTokens) Fine(from, to string, amount int) error {
	f.from, f.to, f.amount = from, to, amount
	return nil
}

func newTestTown(t *testing.T, tune tuning.Tuning, stub *oracle.Stub) (*Town, *store.Store, *fakeTokens) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "town.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	tokens := &fakeTokens{}
	tw := New(st, stub, tokens, tune, rand.New(rand.NewSource(3)), log.New(io.Discard, "", 0))
	return tw, st, tokens
}

func citizens() []roster.Citizen {
	return []roster.Citizen{
		{Name: "Mara", Role: roster.RoleFarmer, Status: roster.StatusAlive},
		{Name: "Ivo", Role: roster.RoleThief, Status: roster.StatusAlive},
		{Name: "Rook", Role: roster.RolePolice, Status: roster.StatusAlive},
		{Name: "Tessa", Role: roster.RoleTrader, Status: roster.StatusAlive},
	}
}

// A theft committed on day 1 runs the whole pipeline: reported on day
// 2, investigated, the thief arrested, tried, convicted, and printed.
func TestCrimeToConviction(t *testing.T) {
	tune := tuning.Default()
	tune.WitnessChance = 0.0
	tune.GossipChance = 0.0
	tune.FormationChance = 0.0
	tune.VictimReportChance = 1.0
	stub := &oracle.Stub{
		FindingResult: oracle.Finding{
			Note:          "Ivo was seen near the granary.",
			Suspect:       "Ivo",
			Confidence:    0.9,
			RequestArrest: true,
		},
		VerdictResult: oracle.Verdict{Guilty: true, Fine: 25, Statement: "Restitution is owed."},
		PaperResult:   "GAZETTE: thief convicted",
	}
	tw, st, tokens := newTestTown(t, tune, stub)

	day1 := tw.RunDay(context.Background(), 1, citizens(), []Occurrence{{
		Kind:        ledger.KindTheft,
		Actor:       "Ivo",
		Target:      "Mara",
		Asset:       "grain",
		Description: "grain went missing from Mara's barn",
	}})
	// The crime happens after morning intake; nobody has reported yet.
	if day1.CasesOpened != 0 || len(day1.Arrested) != 0 {
		t.Fatalf("day 1 report: %+v", day1)
	}

	day2 := tw.RunDay(context.Background(), 2, citizens(), nil)
	if day2.CasesOpened != 1 {
		t.Fatalf("cases opened on day 2: %d", day2.CasesOpened)
	}
	if len(day2.Arrested) != 1 || day2.Arrested[0] != "Ivo" {
		t.Fatalf("arrested: %v", day2.Arrested)
	}
	if day2.Paper != "GAZETTE: thief convicted" {
		t.Fatalf("paper: %q", day2.Paper)
	}

	c, ok, err := st.GetCase(1)
	if err != nil || !ok {
		t.Fatalf("get case: %v", err)
	}
	if c.Status != "solved" || c.Convicted != "Ivo" {
		t.Fatalf("case: %+v", c)
	}
	if tokens.from != "Ivo" || tokens.to != "Mara" || tokens.amount != 25 {
		t.Fatalf("fine: %+v", tokens)
	}

	// Arrest and verdict are on the record at their proper visibility.
	pub := tw.Ledger().PublicEvents(0)
	foundVerdict := false
	for _, e := range pub {
		if e.Kind == string(ledger.KindVerdict) {
			foundVerdict = true
		}
	}
	if !foundVerdict {
		t.Fatal("no public verdict event")
	}
}

func TestWitnessesGetVagueRecollections(t *testing.T) {
	tune := tuning.Default()
	tune.WitnessChance = 1.0
	tune.GossipChance = 0.0
	tune.FormationChance = 0.0
	tune.VictimReportChance = 0.0
	tw, st, _ := newTestTown(t, tune, &oracle.Stub{})

	tw.RunDay(context.Background(), 1, citizens(), []Occurrence{{
		Kind:        ledger.KindTheft,
		Actor:       "Ivo",
		Target:      "Mara",
		Description: "grain went missing",
	}})

	ev, ok := tw.Ledger().Get(1)
	if !ok || ev.Visibility != string(ledger.Witnessed) {
		t.Fatalf("event: %+v", ev)
	}
	for _, w := range ev.Witnesses {
		if w == "Ivo" || w == "Mara" {
			t.Fatalf("participant listed as witness: %v", ev.Witnesses)
		}
	}
	recs, err := st.Recollections("Rook", 5)
	if err != nil || len(recs) != 1 {
		t.Fatalf("recollections: %v (err=%v)", recs, err)
	}
	// Witnesses learn that something happened, never the ground truth.
	if strings.Contains(recs[0].Text, "grain went missing") {
		t.Fatalf("recollection leaks ground truth: %q", recs[0].Text)
	}
}

func TestGossipPromotesWitnessedToRumor(t *testing.T) {
	tune := tuning.Default()
	tune.WitnessChance = 1.0
	tune.GossipChance = 1.0
	tune.FormationChance = 0.0
	tune.VictimReportChance = 0.0
	tw, _, _ := newTestTown(t, tune, &oracle.Stub{})

	tw.RunDay(context.Background(), 1, citizens(), []Occurrence{{
		Kind:        ledger.KindTheft,
		Actor:       "Ivo",
		Target:      "Mara",
		Description: "grain went missing",
	}})
	ev, _ := tw.Ledger().Get(1)
	if ev.Visibility != string(ledger.Rumor) {
		t.Fatalf("visibility = %q after gossip", ev.Visibility)
	}
}

func TestChronicleWritesDayFiles(t *testing.T) {
	tune := tuning.Default()
	tune.WitnessChance = 0.0
	tune.GossipChance = 0.0
	tune.FormationChance = 0.0
	tune.VictimReportChance = 0.0
	tw, _, _ := newTestTown(t, tune, &oracle.Stub{})

	dir := t.TempDir()
	w := chronicle.NewWriter(dir, "town")
	t.Cleanup(func() { _ = w.Close() })
	tw.AttachChronicle(w)

	tw.RunDay(context.Background(), 1, citizens(), []Occurrence{{
		Kind:        ledger.KindTheft,
		Actor:       "Ivo",
		Target:      "Mara",
		Description: "grain went missing",
	}})
	if err := w.Close(); err != nil {
		t.Fatalf("close chronicle: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "town-day-00001.jsonl.zst")); err != nil {
		t.Fatalf("chronicle file: %v", err)
	}
}

func readChronicle(t *testing.T, path string) []chronicle.Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var out []chronicle.Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e chronicle.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

// The chronicle is the full audit trail: verdicts, arrests, and every
// case transition must land in the day files, not just the day's
// occurrences.
func TestChronicleCoversVerdictsAndCaseTransitions(t *testing.T) {
	tune := tuning.Default()
	tune.WitnessChance = 0.0
	tune.GossipChance = 0.0
	tune.FormationChance = 0.0
	tune.VictimReportChance = 1.0
	stub := &oracle.Stub{
		FindingResult: oracle.Finding{
			Note:          "Ivo was seen near the granary.",
			Suspect:       "Ivo",
			Confidence:    0.9,
			RequestArrest: true,
		},
		VerdictResult: oracle.Verdict{Guilty: true, Fine: 25, Statement: "Restitution is owed."},
	}
	tw, _, _ := newTestTown(t, tune, stub)

	dir := t.TempDir()
	w := chronicle.NewWriter(dir, "town")
	t.Cleanup(func() { _ = w.Close() })
	tw.AttachChronicle(w)

	tw.RunDay(context.Background(), 1, citizens(), []Occurrence{{
		Kind:        ledger.KindTheft,
		Actor:       "Ivo",
		Target:      "Mara",
		Asset:       "grain",
		Description: "grain went missing from Mara's barn",
	}})
	tw.RunDay(context.Background(), 2, citizens(), nil)
	if err := w.Close(); err != nil {
		t.Fatalf("close chronicle: %v", err)
	}

	var entries []chronicle.Entry
	entries = append(entries, readChronicle(t, filepath.Join(dir, "town-day-00001.jsonl.zst"))...)
	entries = append(entries, readChronicle(t, filepath.Join(dir, "town-day-00002.jsonl.zst"))...)

	eventKinds := map[string]bool{}
	caseStatuses := map[string]bool{}
	var convicted string
	for _, e := range entries {
		switch e.Kind {
		case "event":
			ev, ok := e.Event.(map[string]any)
			if !ok {
				t.Fatalf("event entry payload: %+v", e)
			}
			k, _ := ev["Kind"].(string)
			eventKinds[k] = true
		case "case":
			c, ok := e.Case.(map[string]any)
			if !ok {
				t.Fatalf("case entry payload: %+v", e)
			}
			status, _ := c["Status"].(string)
			caseStatuses[status] = true
			if status == "solved" {
				convicted, _ = c["Convicted"].(string)
			}
		}
	}

	for _, k := range []string{"theft", "arrest", "verdict"} {
		if !eventKinds[k] {
			t.Fatalf("chronicle missing %s event; got kinds %v", k, eventKinds)
		}
	}
	if !caseStatuses["open"] || !caseStatuses["solved"] {
		t.Fatalf("chronicle missing case transitions; got statuses %v", caseStatuses)
	}
	if convicted != "Ivo" {
		t.Fatalf("solved case entry names %q", convicted)
	}
}
