package hostsfile

import (
	"strings"
	"time"

	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/pkg/errors"
)

const (
	StartMarker = "#------ Quicken Hosts Start ------"
	EndMarker   = "#------ Quicken Hosts End ------"

	updateTimePrefix = "# Update time: "
	updateTimeLayout = "2006-01-02 15:04:05"
	ipColumnWidth    = 20
)

// Document is the hosts file content together with its line terminator.
type Document struct {
	Path       string
	Content    string
	LineEnding string
}

func NewDocument(path string, content string) *Document {
	return &Document{Path: path, Content: content, LineEnding: DetectLineEnding(content)}
}

// DetectLineEnding returns the first line terminator in content, or "\n"
// when there is none.
func DetectLineEnding(content string) string {
	i := strings.IndexAny(content, "\r\n")
	switch {
	case i < 0:
		return "\n"
	case content[i] == '\n':
		return "\n"
	case i+1 < len(content) && content[i+1] == '\n':
		return "\r\n"
	default:
		return "\r"
	}
}

// FindBlock returns the byte range of the managed block, end marker
// included. Anything but exactly one start marker followed by exactly one
// end marker is reported as ErrCorruptBlock.
func FindBlock(content string) (start int, end int, found bool, err error) {
	starts := strings.Count(content, StartMarker)
	ends := strings.Count(content, EndMarker)
	if starts == 0 && ends == 0 {
		return 0, 0, false, nil
	}
	if starts != 1 || ends != 1 {
		return 0, 0, false, errors.Wrapf(ErrCorruptBlock, "found %d start and %d end markers", starts, ends)
	}
	start = strings.Index(content, StartMarker)
	endMarker := strings.Index(content, EndMarker)
	if endMarker < start {
		return 0, 0, false, errors.Wrap(ErrCorruptBlock, "end marker precedes start marker")
	}
	return start, endMarker + len(EndMarker), true, nil
}

// ManagedContent returns the trimmed inner content of the managed block,
// up to its update time line.
func ManagedContent(content string) (string, bool, error) {
	start, end, found, err := FindBlock(content)
	if err != nil || !found {
		return "", found, err
	}
	return inner(content, start, end), true, nil
}

func inner(content string, start, end int) string {
	body := content[start+len(StartMarker) : end-len(EndMarker)]
	// The update time line closes the block; nothing after it is content.
	if i := strings.Index(body, strings.TrimSpace(updateTimePrefix)); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

// RenderHosts renders one comment header per non-empty group followed by
// its "ip hostname" lines. Groups without hosts are left out.
func RenderHosts(groups []model.ResolvedGroup, eol string) string {
	sections := []string{}
	for _, group := range groups {
		if len(group.Hosts) == 0 {
			continue
		}
		lines := []string{"# " + group.Name}
		for _, host := range group.Hosts {
			lines = append(lines, hostLine(host))
		}
		sections = append(sections, strings.Join(lines, eol))
	}
	return strings.Join(sections, eol+eol)
}

func hostLine(host model.ResolvedHost) string {
	ip := host.IP
	if len(ip) < ipColumnWidth {
		ip += strings.Repeat(" ", ipColumnWidth-len(ip))
	} else {
		ip += " "
	}
	return ip + host.Hostname
}

// ComposeBlock wraps rendered hosts in the markers and a timestamp line.
func ComposeBlock(rendered string, eol string, now time.Time) string {
	return strings.Join([]string{
		StartMarker,
		"",
		rendered,
		"",
		updateTimePrefix + now.Format(updateTimeLayout),
		"",
		EndMarker,
	}, eol)
}

// Patch returns content with its managed block set to rendered. changed is
// false when the existing block already holds the same hosts.
func Patch(content string, rendered string, eol string, now time.Time) (patched string, changed bool, err error) {
	start, end, found, err := FindBlock(content)
	if err != nil {
		return "", false, err
	}
	block := ComposeBlock(rendered, eol, now)
	if !found {
		return content + eol + block, true, nil
	}

	if inner(content, start, end) == strings.TrimSpace(rendered) {
		return content, false, nil
	}
	return content[:start] + block + content[end:], true, nil
}
