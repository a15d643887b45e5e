// Package logging tees the process log to stdout and a size-capped file.
// Import runs write one line per page and per failed item, so an unattended
// daemon would otherwise grow its log without bound.
package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

// DefaultMaxSize caps the log file when no explicit limit is given.
const DefaultMaxSize = 4 * 1024 * 1024

// A LogFile is a size-capped append target. When a write pushes it past the
// cap, the current file is moved aside as <path>.1 and a fresh one is
// started, so at most one backup exists at any time.
type LogFile struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	size  int64
	limit int64
}

// Open opens or creates the log file at path. A limit of zero or less selects
// DefaultMaxSize. A pre-existing file already over the cap is rotated out
// rather than truncated, so the tail of the previous run survives a restart.
func Open(path string, limit int64) (*LogFile, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	if info, err := os.Stat(path); err == nil && info.Size() > limit {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &LogFile{file: f, path: path, size: size, limit: limit}, nil
}

// Setup opens the log file and routes the standard logger to it and stdout.
func Setup(path string, limit int64) (*LogFile, error) {
	lf, err := Open(path, limit)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, lf))
	return lf, nil
}

func (w *LogFile) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.limit {
		w.rotate()
	}
	return n, err
}

func (w *LogFile) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.size = 0
}

func (w *LogFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
