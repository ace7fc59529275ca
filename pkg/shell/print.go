package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true)

	outputLabel = color.New(color.FgBlue).Sprint("output")
	errorLabel  = color.New(color.FgRed, color.Bold).Sprint("error")
)

// prompt renders the command prompt, including the connected target
// while a remote session is active.
func (s *Shell) prompt() string {
	if target := s.engine.Target(); target != "" {
		return promptStyle.Render("nmb") + " " + targetStyle.Render("("+target+")") + " > "
	}

	return promptStyle.Render("nmb") + " > "
}

// printOutput prints a feedback message with the output tag.
func (s *Shell) printOutput(format string, a ...interface{}) {
	fmt.Fprintf(s.Out, "[%s] %s\n", outputLabel, fmt.Sprintf(format, a...))
}

// printError prints an absorbed error with the error tag.
func (s *Shell) printError(err error) {
	fmt.Fprintf(s.Out, "[%s] %s\n", errorLabel, err)
}

// printNumbered prints a titled, one-based listing of names.
func (s *Shell) printNumbered(title string, names []string) {
	fmt.Fprintln(s.Out, title)
	for i, name := range names {
		fmt.Fprintf(s.Out, "  %d. %s\n", i+1, name)
	}
}

// printInstances renders the instance table.
func (s *Shell) printInstances() {
	instances := s.engine.Instances()
	if len(instances) == 0 {
		s.printOutput("No running modules.")
		return
	}

	fmt.Fprintln(s.Out, headerStyle.Render(fmt.Sprintf("%-24s %-8s %-9s %-10s %s", "MODULE", "PID", "STATE", "STARTED", "ARGS")))
	for _, instance := range instances {
		state := "running"
		if !instance.Running() {
			state = "exited"
		}

		fmt.Fprintf(s.Out, "%-24s %-8d %-9s %-10s %s\n",
			instance.Name,
			instance.PID,
			state,
			instance.StartedAt.Format("15:04:05"),
			strings.Join(instance.Args, " "),
		)
	}
}

// printHelp prints the command reference.
func (s *Shell) printHelp() {
	fmt.Fprintln(s.Out, headerStyle.Render("Available commands:"))
	fmt.Fprintln(s.Out, "  update - Fetch the list of available modules from the catalog.")
	fmt.Fprintln(s.Out, "  install [name ...] - Install modules from the catalog.")
	fmt.Fprintln(s.Out, "  list - List installed modules.")
	fmt.Fprintln(s.Out, "  launch [name] [args ...] - Launch a module, prompting for missing inputs.")
	fmt.Fprintln(s.Out, "  ps - Show tracked module instances.")
	fmt.Fprintln(s.Out, "  stop [name] - Stop a running module.")
	fmt.Fprintln(s.Out, "  remove [name] - Remove an installed module.")
	fmt.Fprintln(s.Out, "  read <log_file> - Read a log file from the workspace.")
	fmt.Fprintln(s.Out, "  connect <user@host> - Connect to a remote target via SSH.")
	fmt.Fprintln(s.Out, "  disconnect - Disconnect the current SSH session.")
	fmt.Fprintln(s.Out, "  download <remote_path> [local_path] - Download a file from the target.")
	fmt.Fprintln(s.Out, "  help - Show this help.")
	fmt.Fprintln(s.Out, "  exit - Exit the application.")
	fmt.Fprintln(s.Out, "Usage examples:")
	fmt.Fprintln(s.Out, "  connect operator@10.0.0.5")
	fmt.Fprintln(s.Out, "  install recon.sh")
	fmt.Fprintln(s.Out, "  launch recon.sh 10.0.0.1")
}
