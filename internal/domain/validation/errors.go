package validation

import (
	"sort"
	"strings"
)

// Violation messages.
const (
	MsgMissing      = "Missing data for required field."
	MsgNotString    = "Not a valid string."
	MsgBlank        = "Field may not be blank."
	MsgNull         = "Field may not be null."
	MsgUnknown      = "Unknown field."
	MsgInvalidInput = "Invalid input type."
	MsgInvalidJSON  = "Invalid JSON body."
)

// SchemaKey collects violations that belong to the payload as a whole.
const SchemaKey = "_schema"

// Errors maps a field name to its violation messages.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error implements error with a deterministic, field-sorted summary.
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// nilIfEmpty keeps callers from seeing a non-nil empty map as a failure.
func (e Errors) nilIfEmpty() Errors {
	if len(e) == 0 {
		return nil
	}
	return e
}
