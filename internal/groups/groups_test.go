package groups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jaxxstorm/quicken/internal/model"
)

const groupsYAML = `
groups:
  - name: CDN
    hostnames:
      - A.Example.com.
      - b.example.com, c.example.com # trailing comment
      - invalid_host
      - a.example.com
  - name: Disabled
    enabled: false
    hostnames: [d.example.com]
  - name: Empty
    hostnames: []
`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(groupsYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.HostGroup{
		{Name: "CDN", Hostnames: []string{"a.example.com", "b.example.com", "c.example.com"}},
		{Name: "Empty", Hostnames: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestParseRejectsUnnamedGroup(t *testing.T) {
	if _, err := Parse([]byte("groups:\n  - hostnames: [a.example.com]\n")); err == nil {
		t.Fatalf("expected error for unnamed group")
	}
	if _, err := Parse([]byte("groups: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	if err := os.WriteFile(path, []byte(groupsYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestLoadDefault(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != DefaultGroupName {
		t.Fatalf("expected default group, got %#v", got)
	}
	if len(Hostnames(got[0].Hostnames)) != len(got[0].Hostnames) {
		t.Fatalf("default hostnames must all be valid and distinct")
	}
}

func TestNormalizeHostname(t *testing.T) {
	valid := map[string]string{
		" GitHub.com ":               "github.com",
		"raw.githubusercontent.com.": "raw.githubusercontent.com",
	}
	for in, want := range valid {
		got, ok := NormalizeHostname(in)
		if !ok || got != want {
			t.Fatalf("NormalizeHostname(%q) = %q %v, want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "localhost", "a..b.com", "-a.com", "a_b.com", "https://github.com"} {
		if _, ok := NormalizeHostname(in); ok {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}
