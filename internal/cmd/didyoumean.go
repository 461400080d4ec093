package cmd

import (
	"strings"

	"github.com/idmkit/idm-cli/internal/resolve"
)

// suggestCommand finds the closest command name to the unknown input.
// Returns empty string if nothing is close.
func suggestCommand(unknown string, commands []string) string {
	return resolve.Closest(unknown, commands)
}

// suggestFlag finds the closest flag name to the unknown input.
// Leading dashes are ignored for comparison but kept in the result.
func suggestFlag(unknown string, flagNames []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	bare := make([]string, len(flagNames))
	for i, f := range flagNames {
		bare[i] = strings.TrimLeft(f, "-")
	}
	match := resolve.Closest(stripped, bare)
	if match == "" {
		return ""
	}
	for i, b := range bare {
		if b == match {
			return flagNames[i]
		}
	}
	return ""
}
