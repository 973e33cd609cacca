package analyze

import (
	"fmt"

	"github.com/jaxxstorm/quicken/internal/model"
)

type OutcomeKind string

const (
	OutcomeUpdated     OutcomeKind = "UPDATED"
	OutcomeUnchanged   OutcomeKind = "UNCHANGED"
	OutcomeResolved    OutcomeKind = "RESOLVED"
	OutcomePartial     OutcomeKind = "PARTIAL"
	OutcomeFlushFailed OutcomeKind = "FLUSH_FAILED"
	OutcomeNoResults   OutcomeKind = "NO_RESULTS"
)

type Outcome struct {
	Kind    OutcomeKind
	Summary string
	Hints   []string
}

// Success reports whether a diagnosis needs no follow-up from the user.
func Success(d model.Diagnosis) bool {
	switch OutcomeKind(d.Classification) {
	case OutcomeUpdated, OutcomeUnchanged, OutcomeResolved:
		return true
	}
	return false
}

// Diagnose classifies a finished run. Flush failures take precedence over
// skipped hostnames since the written entries may not be in effect yet.
func Diagnose(report model.RunReport) model.Diagnosis {
	return diagnosis(classify(report))
}

func classify(report model.RunReport) Outcome {
	summary := fmt.Sprintf("%d resolved, %d skipped", report.Resolved, report.Skipped)

	switch {
	case report.Resolved == 0 && report.Skipped > 0:
		return Outcome{Kind: OutcomeNoResults, Summary: summary, Hints: []string{
			"every lookup failed; the lookup site may be rate limiting, retry later or use --source dns",
			"check network connectivity to the lookup source",
		}}
	case report.FlushError != "":
		return Outcome{Kind: OutcomeFlushFailed, Summary: summary, Hints: []string{
			"hosts file was written but the DNS cache was not flushed",
			"flush manually or restart the resolver service: " + report.FlushError,
		}}
	case report.Skipped > 0:
		return Outcome{Kind: OutcomePartial, Summary: summary, Hints: []string{
			"skipped hostnames were left out of the hosts file and use system DNS until a later run resolves them",
		}}
	case !report.Applied:
		return Outcome{Kind: OutcomeResolved, Summary: summary}
	case report.Changed:
		return Outcome{Kind: OutcomeUpdated, Summary: summary}
	default:
		return Outcome{Kind: OutcomeUnchanged, Summary: summary}
	}
}

func diagnosis(outcome Outcome) model.Diagnosis {
	return model.Diagnosis{
		Classification: string(outcome.Kind),
		Summary:        outcome.Summary,
		Hints:          outcome.Hints,
	}
}
