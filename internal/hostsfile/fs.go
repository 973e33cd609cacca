package hostsfile

import (
	"bytes"
	"os"

	atomicfile "github.com/natefinch/atomic"
)

type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Exists(path string) (bool, error)
}

// OSFileSystem replaces files atomically so a crash never leaves a
// half-written hosts file. The existing file mode is kept.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(path string, data []byte) error {
	return atomicfile.WriteFile(path, bytes.NewReader(data))
}

func (OSFileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
