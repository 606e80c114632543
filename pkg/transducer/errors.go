package transducer

import "fmt"

// FormatError reports a malformed or truncated transducer buffer. It is
// returned at load time only; a store that failed to load is never exposed.
type FormatError struct {
	Section string
	Offset  int
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("transducer format error in %s at offset %d: %s", e.Section, e.Offset, e.Reason)
}

func formatErrf(section string, offset int, format string, args ...any) *FormatError {
	return &FormatError{Section: section, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
