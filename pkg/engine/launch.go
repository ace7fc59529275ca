package engine

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mavedirra/nmb/pkg/module"
	"github.com/mavedirra/nmb/pkg/store"
	"github.com/mavedirra/nmb/pkg/tail"
)

// Launch runs the named module, remotely if a session is attached and
// locally otherwise. Arguments are passed to the script verbatim.
func (e *Engine) Launch(name string, args ...string) error {
	if !e.store.HasModule(name) {
		return fmt.Errorf("%w: %s", store.ErrModuleNotFound, name)
	}

	desc, err := module.ParseFile(e.store.ModulePath(name))
	if err != nil {
		return err
	}

	if e.session != nil {
		return e.launchRemote(name, args, desc)
	}

	return e.launchLocal(name, args, desc)
}

// launchRemote stages the module on the remote target, runs it to
// completion and stores the captured output. The call blocks until
// the remote command terminates; there is no timeout.
func (e *Engine) launchRemote(name string, args []string, desc module.Descriptor) error {
	src, err := e.store.ReadModule(name)
	if err != nil {
		return err
	}

	if err := e.session.Upload(name, bytes.NewReader(src)); err != nil {
		return err
	}

	e.Logger.Info().Str("module", name).Str("target", e.session.Host()).Msg("Running module remotely")

	output, err := e.session.RunScript(name, args...)
	if err != nil {
		return err
	}

	logPath := e.logPath(desc)
	if logPath == "" {
		// Without a declared log file the captured output has
		// nowhere to go but the console.
		fmt.Fprintln(e.stdout, output)
		return nil
	}

	// Remote runs capture output in one piece, so the log reflects
	// the latest run instead of growing forever.
	if err := os.WriteFile(logPath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}

	e.Logger.Info().Str("module", name).Str("log", logPath).Msg("Remote output written")

	return nil
}

// launchLocal starts the module as a background process and records
// it in the instance table.
func (e *Engine) launchLocal(name string, args []string, desc module.Descriptor) error {
	argv, err := module.Command(e.store.ModulePath(name), args...)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)

	logPath := e.logPath(desc)

	var logFile *os.File
	if desc.Silent && logPath != "" {
		logFile, err = os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	} else {
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return fmt.Errorf("failed to start module: %w", err)
	}

	instance := &Instance{
		Name:      name,
		RunID:     uuid.New().String(),
		PID:       cmd.Process.Pid,
		Args:      args,
		StartedAt: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
	}

	// A relaunch replaces the tracked instance. The previous process
	// keeps running but can no longer be reached via stop.
	if previous, ok := e.instances[name]; ok {
		e.Logger.Warn().Str("module", name).Int("pid", previous.PID).Msg("Replacing tracked instance; previous process continues unmanaged")
	}
	e.instances[name] = instance

	// Reap the process when it exits so that it does not linger as a
	// zombie and the log handle is released. The instance table is
	// not touched; entries leave it only through an explicit stop.
	go func() {
		cmd.Wait()
		if logFile != nil {
			logFile.Close()
		}
		close(instance.done)
	}()

	e.Logger.Info().
		Str("module", name).
		Str("run_id", instance.RunID).
		Int("pid", instance.PID).
		Msg("Module launched")

	if desc.FollowLog && logPath != "" {
		e.followLog(logPath)
	}

	return nil
}

// followLog opens a live view of the log file, preferring a new tmux
// window and falling back to an in-process follower. The follower is
// detached: it is not tracked as an instance and not affected by stop.
func (e *Engine) followLog(logPath string) {
	if _, err := e.lookPath("tmux"); err == nil {
		cmd := e.followCommand(logPath)
		if err := cmd.Start(); err != nil {
			e.Logger.Warn().Err(err).Msg("Failed to open tmux window")
			return
		}
		go cmd.Wait()

		e.Logger.Info().Str("log", logPath).Msg("Following log in new tmux window")
		return
	}

	go func() {
		if err := tail.Follow(e.tailCtx, logPath, e.stdout); err != nil {
			e.Logger.Warn().Err(err).Str("log", logPath).Msg("Log follower stopped")
		}
	}()

	e.Logger.Info().Str("log", logPath).Msg("Following log")
}

// logPath resolves the declared log file of a module. Relative paths
// are anchored at the workspace root so that the read command finds
// logs written into the logs directory.
func (e *Engine) logPath(desc module.Descriptor) string {
	if desc.Logfile == "" {
		return ""
	}

	if filepath.IsAbs(desc.Logfile) {
		return desc.Logfile
	}

	return filepath.Join(e.store.Root(), desc.Logfile)
}
