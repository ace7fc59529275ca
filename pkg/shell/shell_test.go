package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedirra/nmb/pkg/catalog"
	"github.com/mavedirra/nmb/pkg/engine"
	"github.com/mavedirra/nmb/pkg/store"
)

// orderedCatalog serves modules from memory with a stable listing
// order so that menu selections are deterministic.
type orderedCatalog struct {
	names   []string
	modules map[string]string
}

func (c *orderedCatalog) List(ctx context.Context) ([]string, error) {
	return append([]string{}, c.names...), nil
}

func (c *orderedCatalog) Fetch(ctx context.Context, name string) ([]byte, error) {
	src, ok := c.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
	}
	return []byte(src), nil
}

func newOrderedCatalog(modules map[string]string, names ...string) *orderedCatalog {
	return &orderedCatalog{names: names, modules: modules}
}

// stubSession only needs to report a host for prompt rendering.
type stubSession struct {
	host string
}

func (s *stubSession) Host() string                                          { return s.host }
func (s *stubSession) Upload(name string, src io.Reader) error               { return nil }
func (s *stubSession) Download(remotePath string, dst io.Writer) error       { return nil }
func (s *stubSession) RunScript(name string, args ...string) (string, error) { return "", nil }
func (s *stubSession) CombinedOutput(command string) (string, error)         { return "", nil }
func (s *stubSession) Close() error                                          { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func writeModule(t *testing.T, s *store.Store, name, src string) {
	t.Helper()

	_, err := s.SaveModule(name, []byte(src))
	require.NoError(t, err)
}

// run drives a shell over scripted input and returns everything it
// printed.
func run(t *testing.T, s *store.Store, cat engine.Catalog, input string) (string, *engine.Engine) {
	t.Helper()

	logger := zerolog.Nop()
	out := &strings.Builder{}

	options := []engine.Option{
		engine.WithLogger(&logger),
		engine.WithOutput(io.Discard),
		engine.WithErrorOutput(io.Discard),
	}
	if cat != nil {
		options = append(options, engine.WithCatalog(cat))
	}

	eng, err := engine.New(s, options...)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	sh, err := New(eng, engine.DefaultConfig(),
		WithLogger(&logger),
		WithInput(strings.NewReader(input)),
		WithOutput(out),
	)
	require.NoError(t, err)

	require.NoError(t, sh.Run(context.Background()))

	return out.String(), eng
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorContains(t, err, "no engine specified")
}

func TestRunExitsOnExit(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "exit\n")

	assert.Contains(t, out, "nmb")
	assert.Contains(t, out, "Type 'help' for available commands.")
}

func TestRunExitsOnEndOfInput(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "")

	assert.Contains(t, out, "nmb")
}

func TestRunAbsorbsUnknownCommand(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "bogus\nlist\nexit\n")

	assert.Contains(t, out, "command not found: bogus")
	assert.Contains(t, out, "No modules are currently installed.")
}

func TestHelpListsCommands(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "help\nexit\n")

	assert.Contains(t, out, "Available commands:")
	assert.Contains(t, out, "connect <user@host>")
	assert.Contains(t, out, "launch [name] [args ...]")
}

func TestUpdateListsCatalog(t *testing.T) {
	cat := newOrderedCatalog(map[string]string{
		"recon.sh": "#!/bin/bash\n",
		"scan.py":  "#!/usr/bin/env python3\n",
	}, "recon.sh", "scan.py")

	out, _ := run(t, newTestStore(t), cat, "update\nexit\n")

	assert.Contains(t, out, "Available modules:")
	assert.Contains(t, out, "1. recon.sh")
	assert.Contains(t, out, "2. scan.py")
}

func TestInstallByMenuSelection(t *testing.T) {
	s := newTestStore(t)
	cat := newOrderedCatalog(map[string]string{
		"recon.sh": "#!/bin/bash\n",
		"scan.py":  "#!/usr/bin/env python3\n",
	}, "recon.sh", "scan.py")

	out, _ := run(t, s, cat, "install\n2\nexit\n")

	assert.Contains(t, out, "Select a module to install: ")
	assert.Contains(t, out, "Module scan.py installed successfully.")
	assert.True(t, s.HasModule("scan.py"))
	assert.False(t, s.HasModule("recon.sh"))
}

func TestInstallUnknownModuleKeepsLoopAlive(t *testing.T) {
	cat := newOrderedCatalog(map[string]string{}, "recon.sh")

	out, _ := run(t, newTestStore(t), cat, "install ghost.sh\nlist\nexit\n")

	assert.Contains(t, out, "module not in catalog")
	assert.Contains(t, out, "No modules are currently installed.")
}

func TestListShowsInstalledModules(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\n")

	out, _ := run(t, s, nil, "list\nexit\n")

	assert.Contains(t, out, "Installed Modules:")
	assert.Contains(t, out, "1. recon.sh")
}

func TestLaunchPromptsForDeclaredInputs(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\n# Inputs: target\n# Help: target - ip of target\nexit 0\n")

	out, eng := run(t, s, nil, "launch\n1\n10.0.0.1\nexit\n")

	assert.Contains(t, out, "Select a module to launch: ")
	assert.Contains(t, out, "target: (ip of target) ")
	assert.Contains(t, out, "Module recon.sh launched.")

	instances := eng.Instances()
	require.Len(t, instances, 1)
	assert.Equal(t, "recon.sh", instances[0].Name)
	assert.Equal(t, []string{"10.0.0.1"}, instances[0].Args)
}

func TestLaunchWithoutDeclaredInputs(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\nexit 0\n")

	out, _ := run(t, s, nil, "launch recon.sh\nexit\n")

	assert.Contains(t, out, "No inputs required for recon.sh.")
	assert.Contains(t, out, "Module recon.sh launched.")
}

func TestLaunchMissingModule(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "launch ghost.sh\nexit\n")

	assert.Contains(t, out, "module not found")
}

func TestStopWithoutInstances(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "stop\nstop ghost\nexit\n")

	assert.Contains(t, out, "No active modules to stop.")
	assert.Contains(t, out, "no running instance")
}

func TestStopTerminatesLaunchedModule(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\nexec sleep 30\n")

	out, eng := run(t, s, nil, "launch recon.sh\nstop recon.sh\nexit\n")

	assert.Contains(t, out, "Module recon.sh launched.")
	assert.Contains(t, out, "Module recon.sh stopped.")
	assert.Empty(t, eng.Instances())
}

func TestPsShowsInstanceTable(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\nexec sleep 30\n")

	out, eng := run(t, s, nil, "launch recon.sh\nps\nexit\n")

	assert.Contains(t, out, "MODULE")
	assert.Contains(t, out, "recon.sh")
	assert.Contains(t, out, "running")

	require.NoError(t, eng.Stop("recon.sh"))
}

func TestPsWithoutInstances(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "ps\nexit\n")

	assert.Contains(t, out, "No running modules.")
}

func TestRemoveByMenuSelection(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\n")

	out, _ := run(t, s, nil, "remove\n1\nexit\n")

	assert.Contains(t, out, "Module recon.sh has been removed.")
	assert.False(t, s.HasModule("recon.sh"))
}

func TestReadPrintsLogContent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.LogPath("scan.log"), []byte("port 22 open"), 0o644))

	out, _ := run(t, s, nil, "read scan.log\nread\nexit\n")

	assert.Contains(t, out, "port 22 open\n")
	assert.Contains(t, out, "usage: read <log_file>")
}

func TestConnectRejectsMalformedTarget(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "connect\nconnect nohost\nconnect @host\nexit\n")

	assert.Equal(t, 3, strings.Count(out, "usage: connect user@hostname"))
}

func TestWithTimeoutSetsDialTimeout(t *testing.T) {
	logger := zerolog.Nop()

	eng, err := engine.New(newTestStore(t), engine.WithLogger(&logger))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	sh, err := New(eng, nil, WithLogger(&logger))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, sh.Timeout)

	sh, err = New(eng, nil, WithLogger(&logger), WithTimeout(250*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, sh.Timeout)
}

func TestDisconnectWithoutSession(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "disconnect\nexit\n")

	assert.Contains(t, out, "No active SSH session to disconnect.")
}

func TestDownloadRequiresSession(t *testing.T) {
	out, _ := run(t, newTestStore(t), nil, "download\ndownload /tmp/loot.txt\nexit\n")

	assert.Contains(t, out, "usage: download <remote_path> [local_path]")
	assert.Contains(t, out, "not connected to a remote target")
}

func TestSelectFromAcceptsNameOrIndex(t *testing.T) {
	s := newTestStore(t)
	writeModule(t, s, "recon.sh", "#!/bin/bash\n")
	writeModule(t, s, "scan.py", "#!/usr/bin/env python3\n")

	out, _ := run(t, s, nil, "remove\nscan.py\nremove\n9\nexit\n")

	assert.Contains(t, out, "Module scan.py has been removed.")
	assert.Contains(t, out, "invalid selection: 9")
	assert.True(t, s.HasModule("recon.sh"))
}

func TestPromptShowsConnectedTarget(t *testing.T) {
	logger := zerolog.Nop()
	out := &strings.Builder{}

	eng, err := engine.New(newTestStore(t), engine.WithLogger(&logger))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	sh, err := New(eng, engine.DefaultConfig(),
		WithLogger(&logger),
		WithInput(strings.NewReader("")),
		WithOutput(out),
	)
	require.NoError(t, err)

	assert.NotContains(t, sh.prompt(), "@")

	eng.SetSession(&stubSession{host: "operator@10.0.0.5"})
	assert.Contains(t, sh.prompt(), "operator@10.0.0.5")
}
