// Package shell implements the interactive command loop. Every
// command is absorbed at the loop boundary: errors are printed and
// the loop keeps running.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mavedirra/nmb/pkg/engine"
	"github.com/mavedirra/nmb/pkg/sshx"
)

// errAborted marks an interactive flow that ended early because the
// input stream closed. It is swallowed silently.
var errAborted = errors.New("aborted")

// Shell drives an engine from line-based commands.
type Shell struct {
	*Options

	engine  *engine.Engine
	config  *engine.Config
	scanner *bufio.Scanner
}

// New creates a shell on top of an engine and its configuration.
func New(e *engine.Engine, config *engine.Config, options ...Option) (*Shell, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, errors.New("no engine specified")
	}
	if config == nil {
		config = engine.DefaultConfig()
	}

	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Shell{
		Options: opts,
		engine:  e,
		config:  config,
		scanner: scanner,
	}, nil
}

// Run reads and dispatches commands until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer func() {
		signal.Stop(interrupt)
		close(interrupt)
	}()
	go func() {
		for range interrupt {
			fmt.Fprintln(s.Out)
			s.printError(errors.New("interrupt received; use 'exit' to quit"))
		}
	}()

	s.printOutput("Type 'help' for available commands.")

	for {
		fmt.Fprint(s.Out, s.prompt())

		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.Out)
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		verb, args := fields[0], fields[1:]
		if verb == "exit" || verb == "quit" {
			return nil
		}

		if err := s.dispatch(ctx, verb, args); err != nil && !errors.Is(err, errAborted) {
			s.printError(err)
		}
	}
}

// dispatch routes a command verb. Every returned error is absorbed
// by the caller.
func (s *Shell) dispatch(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "help":
		s.printHelp()
		return nil
	case "update":
		return s.update(ctx)
	case "install":
		return s.install(ctx, args)
	case "list":
		return s.list()
	case "launch":
		return s.launch(args)
	case "ps":
		s.printInstances()
		return nil
	case "stop":
		return s.stop(args)
	case "remove":
		return s.remove(args)
	case "read":
		return s.read(args)
	case "connect":
		return s.connect(args)
	case "disconnect":
		return s.disconnect()
	case "download":
		return s.download(args)
	default:
		return fmt.Errorf("command not found: %s", verb)
	}
}

// update fetches and displays the catalog listing.
func (s *Shell) update(ctx context.Context) error {
	names, err := s.engine.Available(ctx)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		s.printOutput("The catalog offers no modules.")
		return nil
	}

	s.printNumbered("Available modules:", names)

	return nil
}

// install downloads the named modules, or offers a selection when
// called without arguments.
func (s *Shell) install(ctx context.Context, args []string) error {
	if len(args) == 0 {
		names, err := s.engine.Available(ctx)
		if err != nil {
			return err
		}

		name, err := s.selectFrom("Available modules:", names, "Select a module to install: ")
		if err != nil {
			return err
		}
		args = []string{name}
	}

	for _, name := range args {
		if err := s.engine.Install(ctx, name); err != nil {
			return err
		}
		s.printOutput("Module %s installed successfully.", name)
	}

	return nil
}

// list displays the installed modules.
func (s *Shell) list() error {
	names, err := s.engine.Installed()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		s.printOutput("No modules are currently installed.")
		return nil
	}

	s.printNumbered("Installed Modules:", names)

	return nil
}

// launch starts a module. Without arguments it offers a module
// selection and prompts for the module's declared inputs, using the
// help text of each input as the prompt hint.
func (s *Shell) launch(args []string) error {
	var name string
	var moduleArgs []string

	if len(args) > 0 {
		name = args[0]
		moduleArgs = args[1:]
	} else {
		names, err := s.engine.Installed()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			s.printOutput("No installed modules found.")
			return nil
		}

		if name, err = s.selectFrom("Installed Modules:", names, "Select a module to launch: "); err != nil {
			return err
		}
	}

	if len(moduleArgs) == 0 {
		args, err := s.promptInputs(name)
		if err != nil {
			return err
		}
		moduleArgs = args
	}

	if err := s.engine.Launch(name, moduleArgs...); err != nil {
		return err
	}

	if s.engine.Connected() {
		s.printOutput("Module %s completed on %s.", name, s.engine.Target())
	} else {
		s.printOutput("Module %s launched.", name)
	}

	return nil
}

// promptInputs asks for each input the module declares, in order.
func (s *Shell) promptInputs(name string) ([]string, error) {
	desc, err := s.engine.Descriptor(name)
	if err != nil {
		return nil, err
	}

	if len(desc.Inputs) == 0 {
		s.printOutput("No inputs required for %s.", name)
		return nil, nil
	}

	var args []string
	for _, input := range desc.Inputs {
		label := input + ": "
		if help, ok := desc.Help[input]; ok {
			label = fmt.Sprintf("%s: (%s) ", input, help)
		}

		value, ok := s.promptLine(label)
		if !ok {
			return nil, errAborted
		}
		args = append(args, value)
	}

	return args, nil
}

// stop terminates a tracked instance, offering a selection when
// called without arguments.
func (s *Shell) stop(args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		instances := s.engine.Instances()
		if len(instances) == 0 {
			s.printOutput("No active modules to stop.")
			return nil
		}

		var names []string
		for _, instance := range instances {
			names = append(names, instance.Name)
		}

		var err error
		if name, err = s.selectFrom("Active modules:", names, "Select a module to stop: "); err != nil {
			return err
		}
	}

	if err := s.engine.Stop(name); err != nil {
		return err
	}

	s.printOutput("Module %s stopped.", name)

	return nil
}

// remove deletes an installed module, offering a selection when
// called without arguments.
func (s *Shell) remove(args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		names, err := s.engine.Installed()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			s.printOutput("No installed modules found.")
			return nil
		}

		if name, err = s.selectFrom("Installed Modules:", names, "Select a module to remove: "); err != nil {
			return err
		}
	}

	if err := s.engine.Remove(name); err != nil {
		return err
	}

	s.printOutput("Module %s has been removed.", name)

	return nil
}

// read prints a log file from the workspace.
func (s *Shell) read(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: read <log_file>")
	}

	data, err := s.engine.ReadLog(args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(s.Out, string(data))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(s.Out)
	}

	return nil
}

// connect establishes a remote session and attaches it to the
// engine. Connection defaults such as the port or a key file come
// from the configuration; without a configured key, the password is
// prompted for.
func (s *Shell) connect(args []string) error {
	if len(args) != 1 || !strings.Contains(args[0], "@") {
		return errors.New("usage: connect user@hostname")
	}

	user, host, _ := strings.Cut(args[0], "@")
	if user == "" || host == "" {
		return errors.New("usage: connect user@hostname")
	}

	config := s.config.SSH
	config.User = user
	config.Host = host

	if config.Key == "" && config.KeyFile == "" {
		password, err := s.promptPassword(fmt.Sprintf("Password for %s: ", args[0]))
		if err != nil {
			return err
		}
		config.Password = password
	}

	options := []sshx.Option{
		sshx.WithLogger(s.Logger),
		sshx.WithTimeout(s.Timeout),
		sshx.WithWorkDir(s.config.RemoteDir),
	}

	if s.config.SSHProxy.Host != "" {
		proxy, err := sshx.NewClient(&s.config.SSHProxy, sshx.WithLogger(s.Logger), sshx.WithTimeout(s.Timeout))
		if err != nil {
			return fmt.Errorf("failed to connect to SSH proxy: %w", err)
		}
		options = append(options, sshx.WithProxy(proxy))
	}

	client, err := sshx.NewClient(&config, options...)
	if err != nil {
		return err
	}

	s.engine.SetSession(client)
	s.printOutput("Connected to %s as %s", host, user)

	return nil
}

// disconnect closes the current remote session.
func (s *Shell) disconnect() error {
	if !s.engine.Connected() {
		s.printOutput("No active SSH session to disconnect.")
		return nil
	}

	if err := s.engine.Disconnect(); err != nil {
		return err
	}

	s.printOutput("Disconnected from SSH session.")

	return nil
}

// download copies a file from the remote target.
func (s *Shell) download(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: download <remote_path> [local_path]")
	}

	remotePath := args[0]
	localPath := filepath.Base(remotePath)
	if len(args) == 2 {
		localPath = args[1]
	}

	if err := s.engine.Download(remotePath, localPath); err != nil {
		return err
	}

	s.printOutput("Downloaded %s to %s.", remotePath, localPath)

	return nil
}

// selectFrom displays a numbered listing and resolves the answer,
// which may be an index or a literal name.
func (s *Shell) selectFrom(title string, names []string, label string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("nothing to select from")
	}

	s.printNumbered(title, names)

	choice, ok := s.promptLine(label)
	if !ok {
		return "", errAborted
	}

	if index, err := strconv.Atoi(choice); err == nil {
		if index < 1 || index > len(names) {
			return "", fmt.Errorf("invalid selection: %s", choice)
		}
		return names[index-1], nil
	}

	for _, name := range names {
		if name == choice {
			return name, nil
		}
	}

	return "", fmt.Errorf("invalid selection: %s", choice)
}

// promptLine prints a label and reads one trimmed line.
func (s *Shell) promptLine(label string) (string, bool) {
	fmt.Fprint(s.Out, label)
	return s.readLine()
}

// readLine reads one trimmed line from the input.
func (s *Shell) readLine() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}

	return strings.TrimSpace(s.scanner.Text()), true
}

// promptPassword reads a password without echo when attached to a
// terminal, falling back to a plain line read otherwise.
func (s *Shell) promptPassword(label string) (string, error) {
	fmt.Fprint(s.Out, label)

	if file, ok := s.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		defer fmt.Fprintln(s.Out)

		password, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, ok := s.readLine()
	if !ok {
		return "", io.EOF
	}

	return line, nil
}
