package sshx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/mavedirra/nmb/pkg/module"
)

// ErrRemoteExec indicates that a remote command could not be run at
// all, as opposed to running and exiting non-zero.
var ErrRemoteExec = errors.New("remote execution failed")

// Cmd describes a command to be executed on the remote host.
type Cmd struct {
	Cmd    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Do runs the command on the remote host, blocking until it
// terminates. The exit status of the command is returned as an error
// of type ssh.ExitError.
func (client *Client) Do(cmd Cmd) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRemoteExec, err)
	}
	defer session.Close()

	session.Stdin = cmd.Stdin
	session.Stdout = cmd.Stdout
	session.Stderr = cmd.Stderr

	return session.Run(cmd.Cmd)
}

// CombinedOutput runs the command on the remote host and returns its
// captured output, the trimmed standard output first, followed by the
// trimmed standard error if any, separated by a single line break. A
// non-zero exit status is not an error; the output is returned as
// captured.
func (client *Client) CombinedOutput(command string) (string, error) {
	var stdout, stderr bytes.Buffer

	err := client.Do(Cmd{
		Cmd:    command,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrRemoteExec, err)
		}
	}

	combined := strings.TrimSpace(stdout.String())
	if errOutput := strings.TrimSpace(stderr.String()); errOutput != "" {
		combined += "\n" + errOutput
	}

	return combined, nil
}

// RunScript runs a previously staged module script in the remote
// working directory, dispatching to the interpreter that matches the
// script's file extension. There is no timeout; a hanging script
// hangs the caller.
func (client *Client) RunScript(name string, args ...string) (string, error) {
	command, err := module.CommandLine(path.Join(client.WorkDir, name), args...)
	if err != nil {
		return "", err
	}

	client.Logger.Debug().Str("command", command).Msg("Running module remotely")

	return client.CombinedOutput(command)
}
