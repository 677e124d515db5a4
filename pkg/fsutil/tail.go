package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Tail reads what has been appended to a file since the previous read.
// It is not safe for concurrent use.
type Tail struct {
	path   string
	offset int64
	last   os.FileInfo
}

// NewTail creates a Tail positioned at the start of path.
func NewTail(path string) *Tail {
	return &Tail{path: path}
}

// Path returns the path being read.
func (t *Tail) Path() string {
	return t.path
}

// Offset returns the number of bytes returned since the last restart.
func (t *Tail) Offset() int64 {
	return t.offset
}

// Read returns the text appended since the previous call. A trailing
// partial UTF-8 sequence is held back until it is complete. When the file
// shrank or was replaced by another file, restarted is true and text is
// read from the start. A missing file yields no text and no error.
func (t *Tail) Read(ctx context.Context) (text string, restarted bool, err error) {
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("tail: %w", ctx.Err())
	default:
	}

	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, classify(t.path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", t.path, err)
	}
	if stat.IsDir() {
		return "", false, fmt.Errorf("%w: %s", ErrIsDirectory, t.path)
	}

	if t.last != nil && (!os.SameFile(t.last, stat) || stat.Size() < t.offset) {
		t.offset = 0
		restarted = true
	}
	t.last = stat

	if stat.Size() == t.offset {
		return "", restarted, nil
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return "", restarted, fmt.Errorf("seek %s: %w", t.path, err)
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return "", restarted, fmt.Errorf("read %s: %w", t.path, err)
	}

	content = content[:CompleteRunes(content)]
	t.offset += int64(len(content))
	return string(content), restarted, nil
}
