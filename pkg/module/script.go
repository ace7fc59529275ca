package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Script identifies the interpreter family of a module file.
type Script string

const (
	// ScriptShell marks modules that are executed by the system shell.
	ScriptShell Script = "shell"
	// ScriptPython marks modules that are executed by the Python
	// interpreter.
	ScriptPython Script = "python"
)

// ErrUnsupportedScript indicates a module file with an extension that
// no known interpreter handles.
var ErrUnsupportedScript = errors.New("unsupported script type")

// ScriptFor derives the script type from a module file name.
func ScriptFor(name string) (Script, error) {
	switch filepath.Ext(name) {
	case ".sh":
		return ScriptShell, nil
	case ".py":
		return ScriptPython, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedScript, name)
}

// Interpreter returns the executable that runs scripts of this type.
func (s Script) Interpreter() string {
	if s == ScriptPython {
		return "python3"
	}

	return "bash"
}

// Command assembles the argument vector that executes the module file
// at path with the given arguments.
func Command(path string, args ...string) ([]string, error) {
	script, err := ScriptFor(path)
	if err != nil {
		return nil, err
	}

	return append([]string{script.Interpreter(), path}, args...), nil
}

// CommandLine renders the command as a single line for execution by a
// remote shell. Arguments are joined verbatim and not quoted.
func CommandLine(path string, args ...string) (string, error) {
	argv, err := Command(path, args...)
	if err != nil {
		return "", err
	}

	return strings.Join(argv, " "), nil
}
