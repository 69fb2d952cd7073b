package binding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-writer/pkg/models"
)

// Prompter asks the user whether name may be opened in mode.
type Prompter func(ctx context.Context, name string, mode Mode) (bool, error)

// FileCapability is a Capability over a path on an afero filesystem. Grants
// live only in memory: a new process starts with nothing granted.
type FileCapability struct {
	fs       afero.Fs
	path     string
	prompter Prompter

	mu      sync.Mutex
	granted map[Mode]bool
	denied  map[Mode]bool
}

// NewFileCapability returns a capability for path. A nil prompter denies
// every request that would need one.
func NewFileCapability(fs afero.Fs, path string, prompter Prompter) *FileCapability {
	return &FileCapability{
		fs:       fs,
		path:     path,
		prompter: prompter,
		granted:  make(map[Mode]bool),
		denied:   make(map[Mode]bool),
	}
}

func (f *FileCapability) Name() string { return filepath.Base(f.path) }

// Path returns the full path of the file.
func (f *FileCapability) Path() string { return f.path }

// Grant records a grant without prompting, for callers that already have the
// user's consent.
func (f *FileCapability) Grant(mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted[mode] = true
	delete(f.denied, mode)
}

// Revoke drops every grant, as when the user withdraws access.
func (f *FileCapability) Revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = make(map[Mode]bool)
}

func (f *FileCapability) state(mode Mode) PermissionState {
	if f.granted[mode] || (mode == ModeRead && f.granted[ModeReadWrite]) {
		return StateGranted
	}
	if f.denied[mode] {
		return StateDenied
	}
	return StatePrompt
}

func (f *FileCapability) QueryPermission(_ context.Context, mode Mode) (PermissionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(mode), nil
}

func (f *FileCapability) RequestPermission(ctx context.Context, mode Mode) (PermissionState, error) {
	f.mu.Lock()
	if st := f.state(mode); st == StateGranted {
		f.mu.Unlock()
		return st, nil
	}
	prompter := f.prompter
	f.mu.Unlock()

	if prompter == nil {
		return StateDenied, nil
	}

	// The lock is not held while the user decides.
	ok, err := prompter(ctx, f.Name(), mode)
	if err != nil {
		return StatePrompt, fmt.Errorf("permission prompt for %s: %w", f.Name(), err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		f.granted[mode] = true
		delete(f.denied, mode)
		return StateGranted, nil
	}
	f.denied[mode] = true
	return StateDenied, nil
}

func (f *FileCapability) Read(ctx context.Context) ([]byte, error) {
	if st, _ := f.QueryPermission(ctx, ModeRead); st != StateGranted {
		return nil, fmt.Errorf("read %s: %w", f.Name(), models.ErrPermissionDenied)
	}
	return afero.ReadFile(f.fs, f.path)
}

func (f *FileCapability) Write(ctx context.Context, data []byte) error {
	if st, _ := f.QueryPermission(ctx, ModeReadWrite); st != StateGranted {
		return fmt.Errorf("write %s: %w", f.Name(), models.ErrPermissionDenied)
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Name(), err)
	}
	return afero.WriteFile(f.fs, f.path, data, os.FileMode(0644))
}
