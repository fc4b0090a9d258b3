package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ashvale.town/internal/oracle"
	"ashvale.town/internal/persistence/chronicle"
	"ashvale.town/internal/persistence/store"
	"ashvale.town/internal/sim/ledger"
	"ashvale.town/internal/sim/roster"
	"ashvale.town/internal/sim/town"
	"ashvale.town/internal/sim/tuning"
	"ashvale.town/internal/transport/observer"
)

func main() {
	var (
		addr        = flag.String("addr", "127.0.0.1:8085", "observer http listen address (empty to disable)")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		configDir   = flag.String("configs", "./configs", "config directory")
		tuningPath  = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed        = flag.Int64("seed", 0, "simulation seed (0: use tuning seed)")
		days        = flag.Int("days", 30, "number of simulated days to run")
		founders    = flag.Int("citizens", 12, "founding citizen count")
		dayMs       = flag.Int("day_ms", 1000, "wall-clock milliseconds per simulated day")
		oracleURL   = flag.String("oracle_url", "", "oracle chat endpoint base url (empty: deterministic stub)")
		oracleModel = flag.String("oracle_model", "gpt-4o-mini", "oracle model name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[townd] ", log.LstdFlags|log.Lmicroseconds)

	_ = os.MkdirAll(*dataDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}
	rng := rand.New(rand.NewSource(tune.Seed))

	st, err := store.Open(filepath.Join(*dataDir, "town.db"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	var orc oracle.Oracle
	if strings.TrimSpace(*oracleURL) != "" {
		orc = oracle.NewClient(*oracleURL, os.Getenv("ASHVALE_ORACLE_KEY"), *oracleModel,
			time.Duration(tune.OracleTimeoutMs)*time.Millisecond, logger)
	} else {
		logger.Printf("no oracle endpoint; running with the deterministic stub")
		orc = &oracle.Stub{
			FindingResult: oracle.Finding{Note: "No new leads today."},
			PaperResult:   "",
		}
	}

	book := newTokenBook(logger)
	tw := town.New(st, orc, book, tune, rng, logger)

	chron := chronicle.NewWriter(filepath.Join(*dataDir, "chronicle"), "town")
	defer chron.Close()
	tw.AttachChronicle(chron)

	ctx, cancel := signalContext()
	defer cancel()

	var obs *observer.Server
	if strings.TrimSpace(*addr) != "" {
		obs = observer.NewServer(logger)
		tw.AttachObserver(obs)

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		mux.HandleFunc("/v1/observer/ws", obs.WSHandler())
		srv := &http.Server{
			Addr:              *addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = srv.Shutdown(ctx2)
		}()
		go func() {
			logger.Printf("observer feed on %s", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("ListenAndServe: %v", err)
			}
		}()
	}

	citizens := roster.Founders(*founders, rng)
	for _, c := range citizens {
		book.set(c.Name, c.Tokens)
	}

	logger.Printf("ashvale rises: %d citizens, seed %d", len(citizens), tune.Seed)

	ticker := time.NewTicker(time.Duration(*dayMs) * time.Millisecond)
	defer ticker.Stop()

	for day := 1; day <= *days; day++ {
		select {
		case <-ctx.Done():
			logger.Printf("interrupted on day %d", day)
			return
		case <-ticker.C:
		}

		occ := dayOccurrences(tw, citizens, rng)
		rep := tw.RunDay(ctx, day, citizens, occ)
		citizens = applyReport(citizens, rep, book, rng)

		logger.Printf("day %d: %d complaints filed, %d arrests, %d cold",
			day, rep.CasesOpened, len(rep.Arrested), len(rep.ColdComplainants))
		if rep.Paper != "" {
			logger.Printf("day %d paper: %s", day, firstLine(rep.Paper))
		}
	}
	logger.Printf("simulation complete after %d days", *days)
}

// dayOccurrences is the demo agent layer: criminals act on their own
// initiative, coordinated ones more often. A real deployment replaces
// this with the LLM agent orchestrator.
func dayOccurrences(tw *town.Town, citizens []roster.Citizen, rng *rand.Rand) []town.Occurrence {
	var out []town.Occurrence
	for _, c := range citizens {
		if !c.Alive() || !roster.Criminal(c.Role) {
			continue
		}
		chance := 0.2 * tw.Registry().CoordinationBonus(c.Name)
		if rng.Float64() >= chance {
			continue
		}
		victim := pickVictim(citizens, c.Name, rng)
		if victim == "" {
			continue
		}
		out = append(out, town.Occurrence{
			Kind:        ledger.KindTheft,
			Actor:       c.Name,
			Target:      victim,
			Asset:       "tokens",
			Description: fmt.Sprintf("%s slipped into %s's home and took a pouch of tokens", c.Name, victim),
			Crowded:     rng.Float64() < 0.3,
		})
		tw.Registry().RecordCrime(c.Name)
	}
	return out
}

func pickVictim(citizens []roster.Citizen, actor string, rng *rand.Rand) string {
	var pool []string
	for _, c := range citizens {
		if c.Alive() && c.Name != actor && !roster.Criminal(c.Role) {
			pool = append(pool, c.Name)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

// applyReport folds the day's outcomes back into the demo citizen
// state: convict balances, victim morale, small random drift.
func applyReport(citizens []roster.Citizen, rep town.DayReport, book *tokenBook, rng *rand.Rand) []roster.Citizen {
	coldSet := map[string]bool{}
	for _, name := range rep.ColdComplainants {
		coldSet[name] = true
	}
	for i := range citizens {
		c := &citizens[i]
		if !c.Alive() {
			continue
		}
		c.Tokens = book.balance(c.Name)
		c.Distress += (rng.Float64() - 0.5) * 0.1
		if coldSet[c.Name] {
			// Justice denied stings.
			c.Distress -= 0.2
		}
		if c.Distress < -1 {
			c.Distress = -1
		}
		if c.Distress > 1 {
			c.Distress = 1
		}
	}
	return citizens
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
