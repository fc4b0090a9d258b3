package oracle

import "context"

// Stub is the deterministic oracle for tests and offline runs. Every
// call is recorded; responses are scripted per method.
type Stub struct {
	FindingResult Finding
	FindingErr    error
	ReportResult  string
	ReportErr     error
	VerdictResult Verdict
	VerdictErr    error
	PaperResult   string
	PaperErr      error

	Investigations []CaseFile
	Closings       []Closing
	Dockets        []Docket
	Editions       []Edition
}

func (s *Stub) Investigate(_ context.Context, f CaseFile) (Finding, error) {
	s.Investigations = append(s.Investigations, f)
	return s.FindingResult, s.FindingErr
}

func (s *Stub) ClosingReport(_ context.Context, c Closing) (string, error) {
	s.Closings = append(s.Closings, c)
	return s.ReportResult, s.ReportErr
}

func (s *Stub) Deliberate(_ context.Context, d Docket) (Verdict, error) {
	s.Dockets = append(s.Dockets, d)
	return s.VerdictResult, s.VerdictErr
}

func (s *Stub) Compose(_ context.Context, e Edition) (string, error) {
	s.Editions = append(s.Editions, e)
	return s.PaperResult, s.PaperErr
}

var _ Oracle = (*Stub)(nil)
