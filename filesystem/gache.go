package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache persist its files through API, so resume state follows
// the backend chosen at runtime.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
