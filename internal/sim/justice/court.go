package justice

import (
	"context"
	"fmt"
	"log"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/underworld"
)

// TokenLedger moves fine money. The orchestrator owns balances; the
// court only asks.
type TokenLedger interface {
	Fine(from, to string, amount int) error
}

// Charge is a pending court matter, filed after an arrest.
type Charge struct {
	CaseID  int64
	Accused string
	Victim  string
	Amount  int
	Day     int
}

// Court holds the docket and asks the oracle magistrate to rule.
// Every trial is public record.
type Court struct {
	orc    oracle.Oracle
	cases  *Manager
	st     *store.Store
	led    *ledger.Ledger
	reg    *underworld.Registry
	tokens TokenLedger
	log    *log.Logger

	docket []Charge
}

func NewCourt(orc oracle.Oracle, cases *Manager, st *store.Store, led *ledger.Ledger, reg *underworld.Registry, tokens TokenLedger, logger *log.Logger) *Court {
	return &Court{orc: orc, cases: cases, st: st, led: led, reg: reg, tokens: tokens, log: logger}
}

func (ct *Court) File(ch Charge) {
	ct.docket = append(ct.docket, ch)
	ct.log.Printf("court: charge filed against %s (case #%d)", ch.Accused, ch.CaseID)
}

func (ct *Court) Pending() int { return len(ct.docket) }

// ProcessDocket tries every pending charge. An oracle failure keeps
// the charge on the docket for tomorrow; a verdict, either way,
// removes it. Guilty verdicts close the case, fine the convict, and
// break any group they led.
func (ct *Court) ProcessDocket(ctx context.Context, day int, investigator string) {
	var held []Charge
	for _, ch := range ct.docket {
		priors, err := ct.st.CountConvictions(ch.Accused)
		if err != nil {
			ct.log.Printf("court: priors for %s failed: %v", ch.Accused, err)
		}
		verdict, err := ct.orc.Deliberate(ctx, oracle.Docket{
			CaseID:        ch.CaseID,
			Accused:       ch.Accused,
			Victim:        ch.Victim,
			Amount:        ch.Amount,
			Day:           day,
			PriorOffenses: priors,
		})
		if err != nil {
			ct.log.Printf("court: deliberation on case #%d failed, holding charge: %v", ch.CaseID, err)
			held = append(held, ch)
			continue
		}

		if !verdict.Guilty {
			ct.log.Printf("court: %s acquitted on case #%d", ch.Accused, ch.CaseID)
			if err := ct.st.AppendCaseNote(ch.CaseID, store.CaseNote{
				Day:  day,
				Note: fmt.Sprintf("%s stood trial and was acquitted. %s", ch.Accused, verdict.Reasoning),
			}); err != nil {
				ct.log.Printf("court: acquittal note on #%d failed: %v", ch.CaseID, err)
			}
			continue
		}

		summary := fmt.Sprintf("Guilty. Fine %d tokens, exile %d days. %s",
			verdict.Fine, verdict.ExileDays, verdict.Statement)
		ct.led.Record(day, ledger.KindVerdict, investigator, ch.Accused, "",
			fmt.Sprintf("%s found guilty in the case of %s. %s", ch.Accused, ch.Victim, verdict.Statement),
			ledger.Public)
		if verdict.Fine > 0 && ct.tokens != nil {
			if err := ct.tokens.Fine(ch.Accused, ch.Victim, verdict.Fine); err != nil {
				ct.log.Printf("court: fine transfer %s -> %s failed: %v", ch.Accused, ch.Victim, err)
			}
		}
		ct.cases.CloseSolved(ctx, ch.CaseID, investigator, day, ch.Accused, summary)
		ct.reg.BreakGroup(ch.Accused, day)
		ct.log.Printf("court: %s convicted on case #%d (fine %d, exile %d)",
			ch.Accused, ch.CaseID, verdict.Fine, verdict.ExileDays)
	}
	ct.docket = held
}
