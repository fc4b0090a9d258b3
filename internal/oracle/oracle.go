// Package oracle isolates the external reasoning engine behind one
// narrow request/response contract. The simulation core never calls
// the network directly; it hands the oracle a clearance-filtered view
// and accepts whatever comes back, degrading to a harmless default on
// any failure.
package oracle

import "context"

// CaseFile is everything the investigator is allowed to see about one
// open case. It contains only evidence that exists in the ledger at
// the investigator's clearance; there is no god-view to leak.
type CaseFile struct {
	Day          int
	CaseID       int64
	DayOpened    int
	Investigator string
	Complainant  string
	Complaint    string
	Suspects     []string
	Evidence     []EvidenceLine
	Notes        []NoteLine
	Roster       []CitizenLine
}

type EvidenceLine struct {
	Day         int
	Visibility  string
	Description string
	Witnesses   []string
}

type NoteLine struct {
	Day  int
	Note string
}

type CitizenLine struct {
	Name   string
	Role   string
	Tokens int
}

// Finding is the oracle's daily read on a case. A missing or
// malformed response is treated by callers as zero confidence with no
// suspect.
type Finding struct {
	Note          string  `json:"case_note"`
	Suspect       string  `json:"suspect"`
	Confidence    float64 `json:"confidence"`
	RequestArrest bool    `json:"request_arrest"`
	NextSteps     string  `json:"next_steps"`
}

// Closing asks for a first-person final report on a closed case.
type Closing struct {
	Investigator string
	CaseID       int64
	DayOpened    int
	DayClosed    int
	Complainant  string
	Complaint    string
	Suspects     []string
	Notes        []NoteLine
	Outcome      string // "solved" or "cold"
	Convicted    string
	Verdict      string
}

// Docket is one charge awaiting deliberation.
type Docket struct {
	CaseID        int64
	Accused       string
	Victim        string
	Amount        int
	Day           int
	PriorOffenses int
}

type Verdict struct {
	Guilty    bool   `json:"guilty"`
	Fine      int    `json:"fine"`
	ExileDays int    `json:"exile_days"`
	Reasoning string `json:"reasoning"`
	Statement string `json:"judge_statement"`
}

// Edition asks for the day's newspaper from PUBLIC items only.
type Edition struct {
	Day   int
	Items []string
}

// Oracle is the external reasoning engine. Implementations must treat
// ctx deadlines as hard; callers bound every call.
type Oracle interface {
	Investigate(ctx context.Context, f CaseFile) (Finding, error)
	ClosingReport(ctx context.Context, c Closing) (string, error)
	Deliberate(ctx context.Context, d Docket) (Verdict, error)
	Compose(ctx context.Context, e Edition) (string, error)
}
