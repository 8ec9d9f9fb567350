package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Failure classes surfaced to the console user. Network failures are
// indistinguishable from server failures from the caller's side, so
// both wrap ErrServer.
var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// ValidationError blocks a submission at the edge: the required fields
// listed here were missing, and no request was issued.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, name := range sortedKeys(e.Fields) {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func classify(status int, message string) error {
	base := ErrServer
	switch {
	case status == 403:
		base = ErrUnauthorized
	case status == 404:
		base = ErrNotFound
	}
	if message == "" {
		return fmt.Errorf("%w (%d)", base, status)
	}
	return fmt.Errorf("%w: %s", base, message)
}
