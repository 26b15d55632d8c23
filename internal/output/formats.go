package output

import (
	"fmt"
	"strings"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable summary
	FormatText OutputFormat = "text"
	// FormatCSV is the single-line machine-readable record
	FormatCSV OutputFormat = "csv"
	// FormatJSON outputs the full result as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs the full result as YAML
	FormatYAML OutputFormat = "yaml"
)

// Formats lists every supported format.
var Formats = []OutputFormat{FormatText, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}

	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown output format %q (available: %s)", s, strings.Join(names, ", "))
}
