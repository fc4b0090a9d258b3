package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ashvale.town/internal/persistence/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "events":
			eventsCmd(os.Args[2:])
			return
		case "cases":
			casesCmd(os.Args[2:])
			return
		case "groups":
			groupsCmd(os.Args[2:])
			return
		case "recall":
			recallCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: ledgerctl <events|cases|groups|recall> [flags]")
	os.Exit(2)
}

func openStore(dataDir string) *store.Store {
	st, err := store.Open(filepath.Join(dataDir, "town.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	return st
}

func eventsCmd(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	vis := fs.String("vis", "", "comma-separated visibility filter (e.g. PUBLIC,REPORTED)")
	kind := fs.String("kind", "", "event kind filter")
	who := fs.String("who", "", "participant filter (actor or target)")
	since := fs.Int("since", 0, "earliest day")
	limit := fs.Int("limit", 50, "max rows")
	asJSON := fs.Bool("json", false, "emit JSON")
	_ = fs.Parse(args)

	st := openStore(*dataDir)
	defer st.Close()

	f := store.EventFilter{
		Kind:        *kind,
		Participant: *who,
		SinceDay:    *since,
		Limit:       *limit,
	}
	for _, v := range strings.Split(*vis, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.Visibilities = append(f.Visibilities, strings.ToUpper(v))
		}
	}
	events, err := st.Events(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(events)
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("#%d day=%d %-10s %-9s %s", e.ID, e.Day, e.Kind, e.Visibility, e.Actor)
		if e.Target != "" {
			line += " -> " + e.Target
		}
		if len(e.Witnesses) > 0 {
			line += fmt.Sprintf(" (seen by %s)", strings.Join(e.Witnesses, ", "))
		}
		fmt.Println(line)
	}
}

func casesCmd(args []string) {
	fs := flag.NewFlagSet("cases", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("limit", 50, "max rows")
	asJSON := fs.Bool("json", false, "emit JSON")
	_ = fs.Parse(args)

	st := openStore(*dataDir)
	defer st.Close()

	cases, err := st.CaseSummaries(*limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(cases)
		return
	}
	for _, c := range cases {
		line := fmt.Sprintf("case #%d %-6s opened=%d complainant=%s", c.ID, c.Status, c.DayOpened, c.Complainant)
		if c.Convicted != "" {
			line += " convicted=" + c.Convicted
		}
		fmt.Println(line)
	}
}

func groupsCmd(args []string) {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	asJSON := fs.Bool("json", false, "emit JSON")
	_ = fs.Parse(args)

	st := openStore(*dataDir)
	defer st.Close()

	groups, err := st.ActiveGroups()
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(groups)
		return
	}
	for _, g := range groups {
		known := "hidden"
		if g.KnownToAuthorities {
			known = "known"
		}
		fmt.Printf("%q led by %s since day %d, %d crimes, %s: %s\n",
			g.Name, g.Leader, g.DayFormed, g.TotalCrimes, known, strings.Join(g.Members, ", "))
	}
}

func recallCmd(args []string) {
	fs := flag.NewFlagSet("recall", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	agent := fs.String("agent", "", "citizen name (required)")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)

	if strings.TrimSpace(*agent) == "" {
		fmt.Fprintln(os.Stderr, "missing -agent")
		os.Exit(2)
	}

	st := openStore(*dataDir)
	defer st.Close()

	recs, err := st.Recollections(*agent, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range recs {
		fmt.Printf("[%s] %s\n", r.Kind, r.Text)
	}
}
