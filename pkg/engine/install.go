package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mavedirra/nmb/pkg/module"
)

// ErrDependencyInstall indicates that a declared dependency could not
// be installed locally.
var ErrDependencyInstall = errors.New("dependency installation failed")

// Install downloads the named module from the catalog into local
// storage and installs its declared dependencies.
func (e *Engine) Install(ctx context.Context, name string) error {
	if e.catalog == nil {
		return errors.New("no catalog configured")
	}

	src, err := e.catalog.Fetch(ctx, name)
	if err != nil {
		return err
	}

	path, err := e.store.SaveModule(name, src)
	if err != nil {
		return err
	}

	e.Logger.Info().Str("module", name).Str("path", path).Msg("Module installed")

	return e.InstallDependencies(module.Parse(src).Dependencies)
}

// InstallDependencies installs system packages on the connected
// remote target, or locally while disconnected.
func (e *Engine) InstallDependencies(deps []string) error {
	if len(deps) == 0 {
		return nil
	}

	if e.session != nil {
		return e.installRemote(deps)
	}

	return e.installLocal(deps)
}

// installLocal installs packages that are not already present on the
// search path. The first failing package aborts the sequence.
func (e *Engine) installLocal(deps []string) error {
	for _, dep := range deps {
		if _, err := e.lookPath(dep); err == nil {
			e.Logger.Debug().Str("dependency", dep).Msg("Dependency already installed")
			continue
		}

		e.Logger.Info().Str("dependency", dep).Msg("Installing dependency")

		cmd := e.installCommand(dep)
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s: %s", ErrDependencyInstall, dep, err)
		}
	}

	return nil
}

// installRemote issues the install command for every package without
// probing for presence first; there is no capability check on the
// remote side. Failures are reported and do not abort the sequence.
func (e *Engine) installRemote(deps []string) error {
	for _, dep := range deps {
		e.Logger.Info().Str("dependency", dep).Str("target", e.session.Host()).Msg("Installing dependency on remote target")

		output, err := e.session.CombinedOutput("sudo apt install -y " + dep)
		if err != nil {
			e.Logger.Warn().Err(err).Str("dependency", dep).Msg("Failed to install remote dependency")
			continue
		}

		e.Logger.Debug().Str("dependency", dep).Str("output", output).Msg("Remote dependency installed")
	}

	return nil
}
