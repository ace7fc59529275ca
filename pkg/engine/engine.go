package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/mavedirra/nmb/pkg/module"
	"github.com/mavedirra/nmb/pkg/store"
)

// ErrNotConnected indicates an operation that requires an active
// remote session while none is attached.
var ErrNotConnected = errors.New("not connected to a remote target")

// Catalog lists and fetches modules from a remote module directory.
type Catalog interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Session is an established connection to a remote execution target.
// Modules are staged into the session's working directory by name and
// run there by the interpreter matching their file extension.
type Session interface {
	Host() string
	Upload(name string, src io.Reader) error
	Download(remotePath string, dst io.Writer) error
	RunScript(name string, args ...string) (string, error)
	CombinedOutput(command string) (string, error)
	Close() error
}

// Engine launches modules locally or on a connected remote target and
// keeps track of locally running instances. All methods are meant to
// be called from a single command loop; launched processes run in the
// background but never reach back into the engine state.
type Engine struct {
	Logger *zerolog.Logger

	store     *store.Store
	catalog   Catalog
	session   Session
	instances map[string]*Instance

	stdout io.Writer
	stderr io.Writer

	// Process hooks, swapped out in tests.
	lookPath       func(file string) (string, error)
	installCommand func(dep string) *exec.Cmd
	followCommand  func(logPath string) *exec.Cmd

	tailCtx    context.Context
	tailCancel context.CancelFunc
}

// New creates a new Engine on top of a module store.
func New(s *store.Store, options ...Option) (*Engine, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	if s == nil {
		return nil, errors.New("no store specified")
	}

	tailCtx, tailCancel := context.WithCancel(context.Background())

	return &Engine{
		Logger:    opts.Logger,
		store:     s,
		catalog:   opts.Catalog,
		instances: map[string]*Instance{},
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		lookPath:  exec.LookPath,
		installCommand: func(dep string) *exec.Cmd {
			return exec.Command("sudo", "apt", "install", "-y", dep)
		},
		followCommand: func(logPath string) *exec.Cmd {
			return exec.Command("tmux", "new-window", "tail -f "+logPath)
		},
		tailCtx:    tailCtx,
		tailCancel: tailCancel,
	}, nil
}

// Close tears down the engine, closing any remote session and
// stopping in-process log followers. Launched modules keep running.
func (e *Engine) Close() error {
	e.tailCancel()
	return e.Disconnect()
}

// SetSession attaches a connected remote session. Subsequent launches
// run on that session until it is disconnected. A previously attached
// session is closed first so that its transport does not leak.
func (e *Engine) SetSession(session Session) {
	if e.session != nil {
		e.Logger.Info().Str("target", e.session.Host()).Msg("Closing previous session")
		if err := e.session.Close(); err != nil {
			e.Logger.Warn().Err(err).Msg("Failed to close previous session")
		}
	}

	e.session = session
}

// Disconnect closes the active remote session. It is safe to call
// while disconnected.
func (e *Engine) Disconnect() error {
	if e.session == nil {
		return nil
	}

	target := e.session.Host()
	err := e.session.Close()
	e.session = nil

	e.Logger.Info().Str("target", target).Msg("Disconnected")

	return err
}

// Connected reports whether a remote session is attached.
func (e *Engine) Connected() bool {
	return e.session != nil
}

// Target returns the user and host of the attached session, or an
// empty string while disconnected.
func (e *Engine) Target() string {
	if e.session == nil {
		return ""
	}

	return e.session.Host()
}

// Installed returns the names of all locally stored modules.
func (e *Engine) Installed() ([]string, error) {
	return e.store.ListModules()
}

// Available returns the names of all modules the catalog offers.
func (e *Engine) Available(ctx context.Context) ([]string, error) {
	if e.catalog == nil {
		return nil, errors.New("no catalog configured")
	}

	return e.catalog.List(ctx)
}

// Remove deletes the module file from local storage. A running
// instance of the module is unaffected and keeps its table entry.
func (e *Engine) Remove(name string) error {
	if _, ok := e.instances[name]; ok {
		e.Logger.Warn().Str("module", name).Msg("Removing module while an instance is tracked")
	}

	if err := e.store.RemoveModule(name); err != nil {
		return err
	}

	e.Logger.Info().Str("module", name).Msg("Module removed")

	return nil
}

// Descriptor returns the descriptor of an installed module.
func (e *Engine) Descriptor(name string) (module.Descriptor, error) {
	src, err := e.store.ReadModule(name)
	if err != nil {
		return module.Descriptor{}, err
	}

	return module.Parse(src), nil
}

// ReadLog returns the content of a log file in the workspace.
func (e *Engine) ReadLog(name string) ([]byte, error) {
	return e.store.ReadLog(name)
}

// Download copies a file from the remote target to a local path.
func (e *Engine) Download(remotePath string, localPath string) error {
	if e.session == nil {
		return ErrNotConnected
	}

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer file.Close()

	if err := e.session.Download(remotePath, file); err != nil {
		return err
	}

	e.Logger.Info().Str("remote", remotePath).Str("local", localPath).Msg("File downloaded")

	return nil
}
