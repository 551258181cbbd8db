package analyzer

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned when a document has no log.entries container.
// No metrics are produced in that case.
var ErrInvalidFormat = errors.New("invalid har format: missing log.entries")

// WarningKind classifies a non-fatal problem with a single entry
type WarningKind string

const (
	WarningUndecodableEntry WarningKind = "undecodable-entry"
	WarningInvalidField     WarningKind = "invalid-field"
	WarningInvalidURL       WarningKind = "invalid-url"
	WarningMissingRequest   WarningKind = "missing-request"
	WarningMissingResponse  WarningKind = "missing-response"
)

// Warning records an entry that could only be partially processed
type Warning struct {
	Entry   int         `json:"entry"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("entry %d: %s: %s", w.Entry, w.Kind, w.Message)
}
