// Package town runs the single-threaded day loop that ties the ledger,
// the case manager, the underworld registry, the court, and the paper
// together. One bad component result degrades that component's output
// for the day; it never aborts the tick.
package town

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/chronicle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/justice"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/news"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/tuning"
	"ashvale.town/internal/sim/underworld"
	"ashvale.town/internal/transport/observer"
)

// Occurrence is one act the orchestrator's agents performed today,
// handed to the core for recording. Visibility left empty means the
// kind's default.
type Occurrence struct {
	Kind        ledger.Kind
	Actor       string
	Target      string
	Asset       string
	Description string
	Visibility  ledger.Visibility
	Crowded     bool
}

// DayReport is what RunDay hands back to the orchestrator: everything
// it needs for morale effects and the next day's agent context.
type DayReport struct {
	Day              int
	CasesOpened      int
	Arrested         []string
	ColdComplainants []string
	Formations       []underworld.Formation
	Paper            string
}

type Town struct {
	st    *store.Store
	led   *ledger.Ledger
	cases *justice.Manager
	court *justice.Court
	reg   *underworld.Registry
	desk  *news.Desk
	tune  tuning.Tuning
	rng   *rand.Rand
	log   *log.Logger

	chron *chronicle.Writer
	obs   *observer.Server
}

func New(st *store.Store, orc oracle.Oracle, tokens justice.TokenLedger, tune tuning.Tuning, rng *rand.Rand, logger *log.Logger) *Town {
	led := ledger.New(st, st, tune, rng, logger)
	cases := justice.NewManager(st, led, orc, tune, rng, logger)
	reg := underworld.New(st, led, tune, rng, logger)
	return &Town{
		st:    st,
		led:   led,
		cases: cases,
		court: justice.NewCourt(orc, cases, st, led, reg, tokens, logger),
		reg:   reg,
		desk:  news.NewDesk(led, orc, logger),
		tune:  tune,
		rng:   rng,
		log:   logger,
	}
}

// AttachChronicle enables the zstd JSONL audit trail. The writer is
// hooked into the store so every recorded event and case transition
// is journaled, whoever performs the write.
func (t *Town) AttachChronicle(w *chronicle.Writer) {
	t.chron = w
	t.st.SetJournal(chronicle.NewJournal(w, t.log))
}

// AttachObserver enables the dashboard websocket feed.
func (t *Town) AttachObserver(s *observer.Server) { t.obs = s }

func (t *Town) Ledger() *ledger.Ledger         { return t.led }
func (t *Town) Registry() *underworld.Registry { return t.reg }
func (t *Town) Cases() *justice.Manager        { return t.cases }
func (t *Town) Court() *justice.Court          { return t.court }

// RunDay advances the town by one day: complaints first, then the
// day's occurrences with witnesses and gossip, then investigation,
// group formation, arrests, court, and finally the paper.
func (t *Town) RunDay(ctx context.Context, day int, citizens []roster.Citizen, occurrences []Occurrence) DayReport {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(t.tune.OracleTimeoutMs)*time.Millisecond)
	defer cancel()

	rep := DayReport{Day: day}
	investigator := t.investigator(citizens)

	rep.CasesOpened = t.cases.IntakeComplaints(day, citizens)

	for _, o := range occurrences {
		vis := o.Visibility
		if vis == "" {
			vis = ledger.DefaultVisibility(o.Kind)
		}
		id := t.led.Record(day, o.Kind, o.Actor, o.Target, o.Asset, o.Description, vis)
		if id == ledger.SentinelID {
			continue
		}
		if vis != ledger.Private {
			continue
		}
		chance := t.tune.WitnessChance
		if o.Crowded {
			chance = t.tune.CrowdedWitnessChance
		}
		t.led.RollWitnesses(id, citizens, o.Actor, o.Target, chance)
	}

	t.gossip(day, citizens)

	arrests, cold := t.cases.Investigate(ctx, investigator, day, citizens)
	rep.ColdComplainants = cold

	rep.Formations = t.reg.CheckFormation(day, citizens)

	for _, a := range arrests {
		suspect, ok := roster.Find(citizens, a.Suspect)
		if !ok || !suspect.Alive() {
			t.log.Printf("town: arrest of %s dropped, not among the living", a.Suspect)
			continue
		}
		t.led.Record(day, ledger.KindArrest, investigator, a.Suspect, "",
			fmt.Sprintf("%s arrested %s on suspicion: %s", investigator, a.Suspect, a.Reason),
			ledger.Reported)
		rep.Arrested = append(rep.Arrested, a.Suspect)
		if name, talked := t.reg.ExposeOnArrest(a.Suspect, day); talked {
			t.log.Printf("town: %s gave up %s under questioning", a.Suspect, name)
		}
		t.court.File(justice.Charge{
			CaseID:  a.CaseID,
			Accused: a.Suspect,
			Victim:  a.Complainant,
			Day:     day,
		})
	}

	t.court.ProcessDocket(ctx, day, investigator)

	rep.Paper = t.desk.DailyEdition(ctx, day)

	t.broadcast(day, rep.Paper)
	return rep
}

// gossip gives every witness of a still-hidden recent event one chance
// to talk. Talking promotes the event to RUMOR; once the town is
// whispering, more whispers only thicken the trail.
func (t *Town) gossip(day int, citizens []roster.Citizen) {
	events, err := t.st.Events(store.EventFilter{
		Visibilities: []string{string(ledger.Witnessed), string(ledger.Rumor)},
		SinceDay:     day - t.tune.DiscoveryWindowDays,
	})
	if err != nil {
		t.log.Printf("town: gossip query failed: %v", err)
		return
	}
	for _, ev := range events {
		for _, w := range ev.Witnesses {
			if t.rng.Float64() >= t.tune.GossipChance {
				continue
			}
			to := t.pickListener(citizens, w, ev.Actor, ev.Target)
			if to == "" {
				continue
			}
			t.led.SpreadRumor(ev.ID, w, to, day)
		}
	}
}

func (t *Town) pickListener(citizens []roster.Citizen, exclude ...string) string {
	var pool []string
	for _, c := range citizens {
		if !c.Alive() {
			continue
		}
		skip := false
		for _, x := range exclude {
			if c.Name == x {
				skip = true
			}
		}
		if !skip {
			pool = append(pool, c.Name)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[t.rng.Intn(len(pool))]
}

// investigator is the first living constable; a town without police
// still books complaints under a standing title.
func (t *Town) investigator(citizens []roster.Citizen) string {
	for _, c := range citizens {
		if c.Role == roster.RolePolice && c.Alive() {
			return c.Name
		}
	}
	return "the constable"
}

func (t *Town) broadcast(day int, paper string) {
	open, err := t.st.OpenCases()
	if err != nil {
		t.log.Printf("town: open cases for broadcast failed: %v", err)
	}
	var known []string
	for _, g := range t.reg.ActiveGroups() {
		if g.KnownToAuthorities {
			known = append(known, g.Name)
		}
	}
	frame := observer.DayFrame{
		Day:          day,
		Paper:        paper,
		PublicEvents: t.led.PublicEvents(day - 1),
		OpenCases:    len(open),
		KnownGroups:  known,
	}
	if t.chron != nil {
		if err := t.chron.Write(day, chronicle.Entry{Day: day, Kind: "summary", Note: paper}); err != nil {
			t.log.Printf("town: chronicle summary failed: %v", err)
		}
	}
	if t.obs != nil {
		t.obs.Broadcast(frame)
	}
}
