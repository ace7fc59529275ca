package engine

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"
)

// ErrNoRunningInstance indicates a stop request for a module without
// a tracked instance.
var ErrNoRunningInstance = errors.New("no running instance")

// Instance is a locally launched module process.
type Instance struct {
	Name      string
	RunID     string
	PID       int
	Args      []string
	StartedAt time.Time

	cmd  *exec.Cmd
	done chan struct{}
}

// Running reports whether the process has not been reaped yet.
func (i *Instance) Running() bool {
	select {
	case <-i.done:
		return false
	default:
		return true
	}
}

// Stop sends a termination signal to the tracked instance of the
// named module and removes it from the instance table. The signal is
// not escalated; a process that ignores it keeps running but is no
// longer tracked.
func (e *Engine) Stop(name string) error {
	instance, ok := e.instances[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRunningInstance, name)
	}

	if err := instance.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop module: %w", err)
	}

	delete(e.instances, name)

	e.Logger.Info().Str("module", name).Int("pid", instance.PID).Msg("Module stopped")

	return nil
}

// Instances returns a snapshot of all tracked instances, ordered by
// module name. Entries may refer to processes that have already
// exited naturally; the table is only cleaned by explicit stops.
func (e *Engine) Instances() []Instance {
	instances := make([]Instance, 0, len(e.instances))
	for _, instance := range e.instances {
		instances = append(instances, *instance)
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Name < instances[j].Name
	})

	return instances
}
