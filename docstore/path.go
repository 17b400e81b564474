package docstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPath is returned for collection paths the store does not
	// serve.
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidDocument is returned when a written document lacks a
	// required field.
	ErrInvalidDocument = errors.New("invalid document")
)

// parseMessagesPath extracts the pair code of a pairs/{code}/messages path.
func parseMessagesPath(path string) (string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "pairs" || parts[1] == "" || parts[2] != "messages" {
		return "", fmt.Errorf("%q: %w", path, ErrInvalidPath)
	}
	return parts[1], nil
}
