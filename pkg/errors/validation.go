package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers accepted from graph files.
const maxNodeIDLength = 256

// ValidateNodeID validates a node identifier read from a graph definition.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID %q contains invalid control characters", id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "node ID %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateCommandName validates the name of a cluster command.
// Names appear in URLs and on the command line, so they are restricted to
// lowercase letters, digits, dashes and underscores.
func ValidateCommandName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "command name cannot be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidInput, "invalid command name %q", name)
		}
	}
	return nil
}
