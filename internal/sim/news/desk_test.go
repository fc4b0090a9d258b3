package news

import (
	"context"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/tuning"
)

type nopRecollector struct{}

func (nopRecollector) Remember(agent, text, kind string, day int) error { return nil }

func newTestDesk(t *testing.T, stub *oracle.Stub) (*Desk, *ledger.Ledger) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "town.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	logger := log.New(io.Discard, "", 0)
	led := ledger.New(st, nopRecollector{}, tuning.Default(), rand.New(rand.NewSource(5)), logger)
	return NewDesk(led, stub, logger), led
}

func TestQuietDaySkipsOracle(t *testing.T) {
	stub := &oracle.Stub{PaperResult: "should not be used"}
	desk, led := newTestDesk(t, stub)

	// Hidden events are not news.
	led.Record(4, ledger.KindTheft, "Ivo", "Mara", "", "grain went missing", ledger.Private)

	paper := desk.DailyEdition(context.Background(), 4)
	if !strings.Contains(paper, "quiet day") {
		t.Fatalf("paper = %q", paper)
	}
	if len(stub.Editions) != 0 {
		t.Fatalf("oracle called %d times on a quiet day", len(stub.Editions))
	}
}

func TestEditionFromPublicRecordOnly(t *testing.T) {
	stub := &oracle.Stub{PaperResult: "GAZETTE: justice served"}
	desk, led := newTestDesk(t, stub)

	led.Record(4, ledger.KindTheft, "Ivo", "Mara", "", "grain went missing", ledger.Private)
	led.Record(4, ledger.KindVerdict, "Rook", "Ivo", "", "Ivo found guilty of theft", ledger.Public)

	paper := desk.DailyEdition(context.Background(), 4)
	if paper != "GAZETTE: justice served" {
		t.Fatalf("paper = %q", paper)
	}
	if len(stub.Editions) != 1 || len(stub.Editions[0].Items) != 1 {
		t.Fatalf("editions = %+v", stub.Editions)
	}
	if !strings.Contains(stub.Editions[0].Items[0], "guilty") {
		t.Fatalf("item = %q", stub.Editions[0].Items[0])
	}
}

func TestEditorFailurePrintsWireItems(t *testing.T) {
	stub := &oracle.Stub{PaperErr: context.DeadlineExceeded}
	desk, led := newTestDesk(t, stub)

	led.Record(4, ledger.KindVerdict, "Rook", "Ivo", "", "Ivo found guilty of theft", ledger.Public)

	paper := desk.DailyEdition(context.Background(), 4)
	if !strings.Contains(paper, "Ashvale Gazette") || !strings.Contains(paper, "guilty") {
		t.Fatalf("paper = %q", paper)
	}
}
