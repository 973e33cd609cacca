package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

const backupName = "hosts.bak"

// Platform is one row of the per-OS dispatch table.
type Platform struct {
	OS           string
	Name         string
	HostsPath    string
	CopyCommand  string
	FlushCommand string
}

func table(goos string) (Platform, bool) {
	switch goos {
	case "darwin":
		return Platform{
			OS:           goos,
			Name:         "macOS",
			HostsPath:    "/etc/hosts",
			CopyCommand:  "cp -f",
			FlushCommand: "killall -HUP mDNSResponder",
		}, true
	case "linux":
		return Platform{
			OS:           goos,
			Name:         "Linux",
			HostsPath:    "/etc/hosts",
			CopyCommand:  "cp -f",
			FlushCommand: "/etc/init.d/nscd restart",
		}, true
	case "windows":
		winDir := os.Getenv("WINDIR")
		if winDir == "" {
			winDir = `C:\Windows`
		}
		return Platform{
			OS:           goos,
			Name:         "Windows",
			HostsPath:    filepath.Join(winDir, "System32", "drivers", "etc", "hosts"),
			CopyCommand:  "cmd /C copy /Y",
			FlushCommand: "ipconfig /flushdns",
		}, true
	}
	return Platform{}, false
}

func Current() (Platform, error) {
	return For(runtime.GOOS)
}

func For(goos string) (Platform, error) {
	p, ok := table(goos)
	if !ok {
		return Platform{}, errors.Errorf("unsupported platform: %s", goos)
	}
	return p, nil
}

// WithHostsPath points the platform at a different hosts file, e.g. for a
// dry run against a copy.
func (p Platform) WithHostsPath(path string) Platform {
	if path != "" {
		p.HostsPath = path
	}
	return p
}

func (p Platform) BackupPath() string {
	return filepath.Join(filepath.Dir(p.HostsPath), backupName)
}

func (p Platform) CopyFile(source, target string) string {
	return strings.Join([]string{p.CopyCommand, Quote(source), Quote(target)}, " ")
}

// Quote wraps s in single quotes so shlex.Split returns it verbatim,
// backslashes included.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
