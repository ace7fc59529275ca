package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const (
	modulesDir = "modules"
	logsDir    = "logs"
	lockFile   = ".nmb.lock"

	dirMode  = 0o750
	fileMode = 0o644
)

var (
	// ErrModuleNotFound indicates that no module file of the requested
	// name exists in the store.
	ErrModuleNotFound = errors.New("module not found")
	// ErrLogNotFound indicates that no log file of the requested name
	// exists in the store.
	ErrLogNotFound = errors.New("log not found")
	// ErrInvalidName indicates a name that does not resolve to a plain
	// file directly inside the store.
	ErrInvalidName = errors.New("invalid name")
	// ErrWorkspaceBusy indicates that another process holds the lock
	// on the workspace root.
	ErrWorkspaceBusy = errors.New("workspace in use by another process")
)

// Store is the on-disk home of downloaded modules and their log files.
// It owns two byte stores addressed by plain file name, modules/<name>
// and logs/<name>, below a single root directory. The root is guarded
// by a file lock so that two processes do not mutate the same
// workspace concurrently.
type Store struct {
	root string
	lock *flock.Flock
}

// Open prepares the workspace root, creating the directory layout if
// required, and acquires the workspace lock.
func Open(root string) (*Store, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	for _, dir := range []string{root, filepath.Join(root, modulesDir), filepath.Join(root, logsDir)} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}

	lock := flock.New(filepath.Join(root, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceBusy, root)
	}

	return &Store{root: root, lock: lock}, nil
}

// Close releases the workspace lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Root returns the absolute path of the workspace root.
func (s *Store) Root() string {
	return s.root
}

// ModulePath returns the path a module of the given name lives at,
// regardless of whether it exists.
func (s *Store) ModulePath(name string) string {
	return filepath.Join(s.root, modulesDir, name)
}

// LogPath returns the path a log of the given name lives at,
// regardless of whether it exists.
func (s *Store) LogPath(name string) string {
	return filepath.Join(s.root, logsDir, name)
}

// SaveModule writes module source to the store, replacing any previous
// file of the same name, and returns the path it was written to.
func (s *Store) SaveModule(name string, src []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	path := s.ModulePath(name)
	if err := os.WriteFile(path, src, fileMode); err != nil {
		return "", fmt.Errorf("failed to write module: %w", err)
	}

	return path, nil
}

// ReadModule returns the source of the named module.
func (s *Store) ReadModule(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(s.ModulePath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	return src, err
}

// HasModule reports whether a module file of the given name exists.
func (s *Store) HasModule(name string) bool {
	if checkName(name) != nil {
		return false
	}

	_, err := os.Stat(s.ModulePath(name))

	return err == nil
}

// ListModules returns the names of all stored modules in
// lexical order.
func (s *Store) ListModules() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, modulesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

// RemoveModule deletes the named module file.
func (s *Store) RemoveModule(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := os.Remove(s.ModulePath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}

		return fmt.Errorf("failed to remove module: %w", err)
	}

	return nil
}

// ReadLog returns the content of the named log file.
func (s *Store) ReadLog(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.LogPath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, name)
	}

	return data, err
}

// checkName rejects names that would escape the store directories or
// hide as dotfiles next to the workspace lock.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}
