// Package groups loads the hostname groups to resolve from YAML.
package groups

import (
	"os"
	"strings"

	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type File struct {
	Groups []Group `yaml:"groups"`
}

type Group struct {
	Name      string   `yaml:"name"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
	Hostnames []string `yaml:"hostnames"`
}

func (g Group) enabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// Load reads path and returns its enabled groups. An empty path yields the
// built-in default group.
func Load(path string) ([]model.HostGroup, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read groups file")
	}
	return Parse(data)
}

func Parse(data []byte) ([]model.HostGroup, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse groups file")
	}

	out := []model.HostGroup{}
	for i, g := range file.Groups {
		if !g.enabled() {
			continue
		}
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, errors.Errorf("group %d has no name", i)
		}
		out = append(out, model.HostGroup{Name: name, Hostnames: Hostnames(g.Hostnames)})
	}
	return out, nil
}

// Hostnames normalizes entries, drops invalid ones and duplicates. An entry
// may hold several names separated by whitespace, commas or semicolons.
func Hostnames(entries []string) []string {
	names := []string{}
	for _, entry := range entries {
		if i := strings.IndexByte(entry, '#'); i >= 0 {
			entry = entry[:i]
		}
		fields := strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		for _, field := range fields {
			if name, ok := NormalizeHostname(field); ok {
				names = append(names, name)
			}
		}
	}
	return lo.Uniq(names)
}

func NormalizeHostname(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if !isHostname(s) {
		return "", false
	}
	return s, true
}

func isHostname(s string) bool {
	if len(s) == 0 || len(s) > 253 || !strings.Contains(s, ".") {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for i := 0; i < len(label); i++ {
			ch := label[i]
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= '0' && ch <= '9':
			case ch == '-':
			default:
				return false
			}
		}
	}
	return true
}
