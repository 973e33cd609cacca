package analyze

import (
	"testing"

	"github.com/jaxxstorm/quicken/internal/model"
)

func TestDiagnoseClassification(t *testing.T) {
	cases := []struct {
		name   string
		report model.RunReport
		want   OutcomeKind
	}{
		{"updated", model.RunReport{Resolved: 2, Applied: true, Changed: true}, OutcomeUpdated},
		{"unchanged", model.RunReport{Resolved: 2, Applied: true}, OutcomeUnchanged},
		{"dry run", model.RunReport{Resolved: 2}, OutcomeResolved},
		{"partial", model.RunReport{Resolved: 1, Skipped: 1, Applied: true, Changed: true}, OutcomePartial},
		{"flush", model.RunReport{Resolved: 1, Skipped: 1, Applied: true, Changed: true, FlushError: "boom"}, OutcomeFlushFailed},
		{"nothing", model.RunReport{Skipped: 3, Applied: true, Changed: true}, OutcomeNoResults},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Diagnose(tc.report)
			if d.Classification != string(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, d.Classification)
			}
		})
	}
}

func TestDiagnoseSummary(t *testing.T) {
	d := Diagnose(model.RunReport{Resolved: 5, Skipped: 2, Applied: true, Changed: true})
	if d.Summary != "5 resolved, 2 skipped" {
		t.Fatalf("unexpected summary %q", d.Summary)
	}
	if len(d.Hints) == 0 {
		t.Fatalf("expected hints for partial run")
	}
	if Success(d) {
		t.Fatalf("partial run should not count as success")
	}
	if !Success(Diagnose(model.RunReport{Resolved: 1, Applied: true})) {
		t.Fatalf("unchanged run should count as success")
	}
}
