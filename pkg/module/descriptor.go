package module

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

// Marker prefixes recognized in module source text. Metadata lives in
// comment lines so that a module file remains a plain executable script.
const (
	markerDependencies = "# Dependencies:"
	markerInputs       = "# Inputs:"
	markerHelp         = "# Help:"
	markerSilent       = "# Silent:"
	markerFollowLog    = "# Follow_log:"
	markerLogfile      = "# Logfile:"
)

// NoDescription is the help text for inputs that do not document themselves.
const NoDescription = "No description available"

// Descriptor holds the metadata that a module declares about itself.
type Descriptor struct {
	// Dependencies is the ordered list of system packages that must
	// be present before the module runs.
	Dependencies []string

	// Inputs is the ordered list of values the module expects as
	// positional arguments, named so they can be prompted for.
	Inputs []string

	// Help maps an input name to its description.
	Help map[string]string

	// Silent redirects the module output away from the console.
	Silent bool

	// FollowLog requests a live view of the log file after launch.
	FollowLog bool

	// Logfile is the path that output is redirected to. Empty if the
	// module does not declare one.
	Logfile string
}

// Parse extracts the descriptor from module source text. All markers
// are optional and order-independent; a source without any markers
// yields a descriptor of defaults. The first occurrence of a marker
// wins, except for help entries which accumulate line by line, the
// last description winning for a duplicated key.
func Parse(src []byte) Descriptor {
	desc := Descriptor{Help: map[string]string{}}

	var deps, inputs, silent, follow, logfile bool

	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case !deps && strings.HasPrefix(line, markerDependencies):
			desc.Dependencies = splitList(line[len(markerDependencies):])
			deps = true
		case !inputs && strings.HasPrefix(line, markerInputs):
			desc.Inputs = splitList(line[len(markerInputs):])
			inputs = true
		case strings.HasPrefix(line, markerHelp):
			key, text := splitHelp(line[len(markerHelp):])
			if key != "" {
				desc.Help[key] = text
			}
		case !silent && strings.HasPrefix(line, markerSilent):
			desc.Silent = isTrue(line[len(markerSilent):])
			silent = true
		case !follow && strings.HasPrefix(line, markerFollowLog):
			desc.FollowLog = isTrue(line[len(markerFollowLog):])
			follow = true
		case !logfile && strings.HasPrefix(line, markerLogfile):
			desc.Logfile = strings.TrimSpace(line[len(markerLogfile):])
			logfile = true
		}
	}

	return desc
}

// ParseFile reads a module file and extracts its descriptor.
func ParseFile(path string) (Descriptor, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}

	return Parse(src), nil
}

// splitList splits a comma-separated marker value into trimmed,
// non-empty tokens.
func splitList(s string) []string {
	var items []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// splitHelp splits a help entry at the first hyphen into an input name
// and its description.
func splitHelp(s string) (string, string) {
	key, text, ok := strings.Cut(s, "-")
	if !ok {
		return strings.TrimSpace(s), NoDescription
	}

	return strings.TrimSpace(key), strings.TrimSpace(text)
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
