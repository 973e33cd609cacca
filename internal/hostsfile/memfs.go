package hostsfile

import (
	"os"
	"sync"

	"github.com/google/shlex"
	"github.com/jaxxstorm/quicken/internal/platform"
	"github.com/pkg/errors"
)

// MemFS is an in-memory FileSystem for tests and dry runs.
type MemFS struct {
	mu       sync.Mutex
	files    map[string][]byte
	writes   int
	WriteErr error
}

func NewMemFS(files map[string]string) *MemFS {
	m := &MemFS{files: map[string][]byte{}}
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte{}, data...), nil
}

func (m *MemFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.files[path] = append([]byte{}, data...)
	m.writes++
	return nil
}

func (m *MemFS) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *MemFS) Content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[path])
}

func (m *MemFS) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Runner returns a shell runner that performs copy commands inside the
// MemFS. Other commands succeed unless flushErr is set.
func (m *MemFS) Runner(flushErr error) *platform.MockRunner {
	return &platform.MockRunner{Responder: func(command string, opts platform.RunOptions) error {
		if opts.Label == labelFlush {
			return flushErr
		}
		argv, err := shlex.Split(command)
		if err != nil || len(argv) < 2 {
			return errors.Errorf("cannot emulate %q", command)
		}
		source, target := argv[len(argv)-2], argv[len(argv)-1]
		data, err := m.ReadFile(source)
		if err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.files[target] = data
		return nil
	}}
}
