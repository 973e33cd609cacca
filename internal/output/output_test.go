package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jaxxstorm/quicken/internal/analyze"
	"github.com/jaxxstorm/quicken/internal/model"
)

func sampleReport() model.RunReport {
	report := model.RunReport{
		Groups: []model.ResolvedGroup{
			{Name: "CDN", Hosts: []model.ResolvedHost{{Hostname: "a.example.com", IP: "93.184.216.34"}}},
		},
		Failures: []model.HostFailure{{Group: "CDN", Hostname: "b.example.com", Reason: "b.example.com:  no candidates\nfound"}},
		Resolved: 1,
		Skipped:  1,
		Applied:  true,
		Changed:  true,
	}
	report.Diagnosis = analyze.Diagnose(report)
	return report
}

func TestRenderPretty(t *testing.T) {
	out := RenderPretty(sampleReport())
	for _, want := range []string{"CDN (1)", "93.184.216.34", "a.example.com", "b.example.com: b.example.com: no candidates found", "1 resolved, 1 skipped", "Hints:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["resolved"].(float64) != 1 || decoded["changed"] != true {
		t.Fatalf("unexpected json: %s", out)
	}
	diagnosis := decoded["diagnosis"].(map[string]any)
	if diagnosis["classification"] != "PARTIAL" {
		t.Fatalf("unexpected classification: %v", diagnosis["classification"])
	}
}

func TestRenderPrettySameNamedGroups(t *testing.T) {
	report := model.RunReport{
		Groups: []model.ResolvedGroup{
			{Name: "CDN", Hosts: []model.ResolvedHost{{Hostname: "a.example.com", IP: "192.0.2.1"}}},
			{Name: "CDN", Hosts: []model.ResolvedHost{}},
		},
		Failures: []model.HostFailure{{Group: "CDN", GroupIndex: 1, Hostname: "b.example.com", Reason: "no candidates found"}},
		Resolved: 1,
		Skipped:  1,
	}
	report.Diagnosis = analyze.Diagnose(report)

	out := RenderPretty(report)
	if n := strings.Count(out, "b.example.com"); n != 1 {
		t.Fatalf("expected failure rendered once, got %d times:\n%s", n, out)
	}
	if strings.Index(out, "b.example.com") < strings.Index(out, "CDN (0)") {
		t.Fatalf("failure rendered under the wrong group:\n%s", out)
	}
}
