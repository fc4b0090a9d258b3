// Package news prints the Ashvale Gazette. The paper works only from
// PUBLIC record, so it is always a step behind the truth.
package news

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/sim/ledger"
)

type Desk struct {
	led *ledger.Ledger
	orc oracle.Oracle
	log *log.Logger
}

func NewDesk(led *ledger.Ledger, orc oracle.Oracle, logger *log.Logger) *Desk {
	return &Desk{led: led, orc: orc, log: logger}
}

// DailyEdition writes the day's paper from what became town knowledge
// since yesterday. A quiet day skips the oracle entirely; an editor
// failure degrades to a plain listing, never a missing edition.
func (d *Desk) DailyEdition(ctx context.Context, day int) string {
	var items []string
	for _, e := range d.led.PublicEvents(day - 1) {
		items = append(items, fmt.Sprintf("Day %d: %s", e.Day, e.Description))
	}
	if len(items) == 0 {
		return fmt.Sprintf("The Ashvale Gazette, day %d. A quiet day in Ashvale. No notable events to report.", day)
	}

	paper, err := d.orc.Compose(ctx, oracle.Edition{Day: day, Items: items})
	if err != nil || strings.TrimSpace(paper) == "" {
		d.log.Printf("news: editor failed on day %d, printing the wire items: %v", day, err)
		return fmt.Sprintf("The Ashvale Gazette, day %d.\n%s", day, strings.Join(items, "\n"))
	}
	return paper
}
