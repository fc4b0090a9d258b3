// Package justice runs the complaint book: victims file reports,
// the constable investigates with whatever evidence clearance allows,
// and cases end solved, cold, or reopened when something new surfaces.
package justice

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/tuning"
)

type Manager struct {
	led  *ledger.Ledger
	st   *store.Store
	orc  oracle.Oracle
	tune tuning.Tuning
	rng  *rand.Rand
	log  *log.Logger
}

func NewManager(st *store.Store, led *ledger.Ledger, orc oracle.Oracle, tune tuning.Tuning, rng *rand.Rand, logger *log.Logger) *Manager {
	return &Manager{led: led, st: st, orc: orc, tune: tune, rng: rng, log: logger}
}

// ArrestRequest is the case manager asking the orchestrator to serve
// an arrest; the core never detains anyone itself.
type ArrestRequest struct {
	CaseID      int64
	Suspect     string
	Complainant string
	Reason      string
}

var complaintPhrases = map[ledger.Kind]string{
	ledger.KindTheft:     "something was taken from me",
	ledger.KindAssault:   "I was attacked",
	ledger.KindBlackmail: "someone is threatening me",
	ledger.KindSabotage:  "my work was ruined",
}

// IntakeComplaints runs at the start of each day. Victims of
// still-hidden crimes roll the per-day reporting chance; success
// promotes the event to REPORTED and opens a case. Returns the number
// of new cases.
func (m *Manager) IntakeComplaints(day int, citizens []roster.Citizen) int {
	opened := 0
	for _, ev := range m.led.UnreportedComplaints(day - m.tune.DiscoveryWindowDays) {
		victim, ok := roster.Find(citizens, ev.Target)
		if !ok || !victim.Alive() {
			continue
		}
		if m.rng.Float64() >= m.tune.VictimReportChance {
			continue
		}

		if !m.led.FileReport(ev.ID, victim.Name, day) {
			continue
		}
		phrase := complaintPhrases[ledger.Kind(ev.Kind)]
		if phrase == "" {
			phrase = "something happened to me"
		}
		id, err := m.st.InsertCase(store.Case{
			EventID:     ev.ID,
			DayOpened:   day,
			Complainant: victim.Name,
			Complaint: fmt.Sprintf("%s reports: %s. I noticed on day %d. I don't know who did it.",
				victim.Name, phrase, ev.Day),
		})
		if err != nil {
			m.log.Printf("justice: open case for event #%d failed: %v", ev.ID, err)
			continue
		}
		opened++
		m.log.Printf("justice: %s filed report, case #%d opened (day %d)", victim.Name, id, day)
	}
	return opened
}

// Investigate advances every open case by one day. Cases past the
// cold threshold close cold (their complainants are returned for the
// caller's morale handling); the rest go to the oracle with
// clearance-filtered evidence. An oracle failure on one case means
// "no new leads today" for that case, never an aborted tick.
func (m *Manager) Investigate(ctx context.Context, investigator string, day int, citizens []roster.Citizen) ([]ArrestRequest, []string) {
	open, err := m.st.OpenCases()
	if err != nil {
		m.log.Printf("justice: open cases query failed: %v", err)
		return nil, nil
	}

	var arrests []ArrestRequest
	var cold []string

	for _, c := range open {
		if day-c.DayOpened >= m.tune.ColdCaseDays {
			m.closeCold(ctx, c, investigator, day)
			cold = append(cold, c.Complainant)
			continue
		}

		evidence := m.led.EvidenceForInvestigator("", c.Complainant, "", c.DayOpened-1)
		finding, err := m.orc.Investigate(ctx, m.caseFile(c, evidence, investigator, day, citizens))
		if err != nil {
			// Degrade to zero confidence, no suspect.
			m.log.Printf("justice: oracle failed on case #%d: %v", c.ID, err)
			finding = oracle.Finding{Note: "No new leads today."}
		}
		finding.Confidence = math.Max(0, math.Min(1, finding.Confidence))
		if finding.Note == "" {
			finding.Note = "No new leads today."
		}

		if err := m.st.AppendCaseNote(c.ID, store.CaseNote{
			Day:        day,
			Note:       finding.Note,
			Suspect:    finding.Suspect,
			Confidence: finding.Confidence,
		}); err != nil {
			m.log.Printf("justice: note on case #%d failed: %v", c.ID, err)
		}
		if finding.Suspect != "" {
			if err := m.st.AddSuspect(c.ID, finding.Suspect); err != nil {
				m.log.Printf("justice: suspect on case #%d failed: %v", c.ID, err)
			}
		}

		if finding.RequestArrest && finding.Suspect != "" && finding.Confidence >= m.tune.ArrestConfidence {
			arrests = append(arrests, ArrestRequest{
				CaseID:      c.ID,
				Suspect:     finding.Suspect,
				Complainant: c.Complainant,
				Reason:      finding.Note,
			})
			m.log.Printf("justice: arrest requested for %s on case #%d (confidence %.2f)",
				finding.Suspect, c.ID, finding.Confidence)
		}
	}

	return arrests, cold
}

// CloseSolved marks a case solved after a conviction, asks the oracle
// for a first-person closing report, and makes the anchoring event
// PUBLIC; the verdict is town news.
func (m *Manager) CloseSolved(ctx context.Context, caseID int64, investigator string, day int, convicted, verdictSummary string) {
	c, ok, err := m.st.GetCase(caseID)
	if err != nil || !ok {
		m.log.Printf("justice: close solved #%d: missing case (err=%v)", caseID, err)
		return
	}

	report := m.closingReport(ctx, c, investigator, day, "solved", convicted, verdictSummary)
	resolution := fmt.Sprintf("Convicted: %s. %s", convicted, verdictSummary)
	closed, err := m.st.CloseCase(caseID, "solved", resolution, report, convicted, day)
	if err != nil {
		m.log.Printf("justice: close solved #%d failed: %v", caseID, err)
		return
	}
	if !closed {
		m.log.Printf("justice: case #%d no longer open, verdict not applied", caseID)
		return
	}
	m.log.Printf("justice: case #%d solved (day %d)", caseID, day)
	m.led.MakePublic(c.EventID, fmt.Sprintf("court_verdict_day_%d", day))
}

// Reopen is legal only from cold. New evidence flips the case back to
// open with a note; anything else is a no-op returning false.
func (m *Manager) Reopen(caseID int64, newEvidence string, day int) bool {
	ok, err := m.st.ReopenCase(caseID, day)
	if err != nil {
		m.log.Printf("justice: reopen #%d failed: %v", caseID, err)
		return false
	}
	if !ok {
		return false
	}
	if err := m.st.AppendCaseNote(caseID, store.CaseNote{
		Day:  day,
		Note: "CASE REOPENED: " + newEvidence,
	}); err != nil {
		m.log.Printf("justice: reopen note on #%d failed: %v", caseID, err)
	}
	m.log.Printf("justice: case #%d reopened (day %d)", caseID, day)
	return true
}

func (m *Manager) closeCold(ctx context.Context, c store.Case, investigator string, day int) {
	report := m.closingReport(ctx, c, investigator, day, "cold", "", "")
	resolution := fmt.Sprintf("No conclusive evidence after %d days.", day-c.DayOpened)
	if _, err := m.st.CloseCase(c.ID, "cold", resolution, report, "", day); err != nil {
		m.log.Printf("justice: close cold #%d failed: %v", c.ID, err)
		return
	}
	m.log.Printf("justice: case #%d went cold (day %d)", c.ID, day)
}

func (m *Manager) closingReport(ctx context.Context, c store.Case, investigator string, day int, outcome, convicted, verdict string) string {
	cl := oracle.Closing{
		Investigator: investigator,
		CaseID:       c.ID,
		DayOpened:    c.DayOpened,
		DayClosed:    day,
		Complainant:  c.Complainant,
		Complaint:    c.Complaint,
		Suspects:     c.Suspects,
		Outcome:      outcome,
		Convicted:    convicted,
		Verdict:      verdict,
	}
	for _, n := range c.Notes {
		cl.Notes = append(cl.Notes, oracle.NoteLine{Day: n.Day, Note: n.Note})
	}
	report, err := m.orc.ClosingReport(ctx, cl)
	if err != nil || report == "" {
		m.log.Printf("justice: closing report for #%d degraded: %v", c.ID, err)
		return fmt.Sprintf("Case #%d closed on day %d. Outcome: %s.", c.ID, day, outcome)
	}
	return report
}

func (m *Manager) caseFile(c store.Case, evidence []store.Event, investigator string, day int, citizens []roster.Citizen) oracle.CaseFile {
	f := oracle.CaseFile{
		Day:          day,
		CaseID:       c.ID,
		DayOpened:    c.DayOpened,
		Investigator: investigator,
		Complainant:  c.Complainant,
		Complaint:    c.Complaint,
		Suspects:     c.Suspects,
	}
	for _, e := range evidence {
		f.Evidence = append(f.Evidence, oracle.EvidenceLine{
			Day:         e.Day,
			Visibility:  e.Visibility,
			Description: e.Description,
			Witnesses:   e.Witnesses,
		})
	}
	for _, n := range c.Notes {
		f.Notes = append(f.Notes, oracle.NoteLine{Day: n.Day, Note: n.Note})
	}
	for _, cz := range citizens {
		if !cz.Alive() {
			continue
		}
		f.Roster = append(f.Roster, oracle.CitizenLine{Name: cz.Name, Role: string(cz.Role), Tokens: cz.Tokens})
	}
	return f
}
