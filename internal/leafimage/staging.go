package leafimage

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// removeFile is swapped in tests to simulate a file that is still held open.
var removeFile = os.Remove

// Staging writes per-query images to intermediate storage.
type Staging struct {
	Dir        string
	RetryDelay time.Duration
}

// NewStaging returns a Staging rooted at dir (os.TempDir when empty).
func NewStaging(dir string, retryDelay time.Duration) *Staging {
	return &Staging{Dir: dir, RetryDelay: retryDelay}
}

// Staged is one image written by Stage. Callers must Release it, normally
// with defer right after a successful Stage.
type Staged struct {
	path       string
	retryDelay time.Duration
	released   bool
}

// Stage encodes img losslessly into a new temporary file.
func (s *Staging) Stage(img *Image) (*Staged, error) {
	f, err := os.CreateTemp(s.Dir, "leaf-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	st := &Staged{path: f.Name(), retryDelay: s.RetryDelay}

	if err := Encode(f, img, "png"); err != nil {
		f.Close()
		st.Release()
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		st.Release()
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}
	return st, nil
}

// Path returns the staged file location.
func (st *Staged) Path() string {
	return st.path
}

// Load decodes the staged file.
func (st *Staged) Load() (*Image, error) {
	return DecodeFile(st.path)
}

// Release deletes the staged file. A failed delete is retried once after
// the configured delay; the second error is returned for logging only.
// Calling Release more than once is a no-op.
func (st *Staged) Release() error {
	if st == nil || st.released {
		return nil
	}
	st.released = true

	err := removeFile(st.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	time.Sleep(st.retryDelay)
	err = removeFile(st.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to remove staging file %s: %w", st.path, err)
}
