package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/rezonia/invoice-generator/internal/atomicfile"
)

// lockRetryDelay is how often a busy lock file is polled
const lockRetryDelay = 10 * time.Millisecond

// fileState is the content of a sequence state file
type fileState struct {
	Last int64 `json:"last"`
}

// File persists the last issued number in a small JSON file, so numbering
// continues across runs of the command-line tool. Every read-modify-write
// holds an exclusive lock on path+".lock", which serializes File values in
// this and other processes.
type File struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewFile creates a file-backed sequence. A missing file means no number
// has been issued yet.
func NewFile(path string) *File {
	return &File{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the state file location
func (f *File) Path() string {
	return f.path
}

// Next reserves and returns the next number
func (f *File) Next(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, f.lock.TryLockContext); err != nil {
		return 0, err
	}
	defer f.lock.Unlock()

	state, err := f.read()
	if err != nil {
		return 0, err
	}
	state.Last++

	data, err := json.Marshal(state)
	if err != nil {
		return 0, err
	}
	if err := atomicfile.WriteBytes(f.path, 0o644, data); err != nil {
		return 0, fmt.Errorf("save sequence %s: %w", f.path, err)
	}
	return state.Last, nil
}

// Peek returns the number Next would return
func (f *File) Peek(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, f.lock.TryRLockContext); err != nil {
		return 0, err
	}
	defer f.lock.Unlock()

	state, err := f.read()
	if err != nil {
		return 0, err
	}
	return state.Last + 1, nil
}

func (f *File) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	locked, err := try(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock sequence %s: %w", f.path, err)
	}
	if !locked {
		return fmt.Errorf("lock sequence %s: %w", f.path, ctx.Err())
	}
	return nil
}

func (f *File) read() (fileState, error) {
	var state fileState

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("read sequence %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("parse sequence %s: %w", f.path, err)
	}
	if state.Last < 0 {
		return state, fmt.Errorf("parse sequence %s: negative last value %d", f.path, state.Last)
	}
	return state, nil
}
