package errs

import "strings"

// FieldError is a validation message attached to a single form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors accumulates validation failures in the order fields were first
// reported. Reporting a field twice replaces its message.
type FieldErrors []FieldError

// Add records message for field.
func (f *FieldErrors) Add(field, message string) {
	for i := range *f {
		if (*f)[i].Field == field {
			(*f)[i].Message = message
			return
		}
	}
	*f = append(*f, FieldError{Field: field, Message: message})
}

// Has reports whether field has a recorded failure.
func (f FieldErrors) Has(field string) bool {
	_, ok := f.Get(field)
	return ok
}

// Get returns the message recorded for field.
func (f FieldErrors) Get(field string) (string, bool) {
	for _, fe := range f {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Fields returns the failing field names in report order.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for _, fe := range f {
		names = append(names, fe.Field)
	}
	return names
}

// Map returns the failures keyed by field name.
func (f FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, fe := range f {
		m[fe.Field] = fe.Message
	}
	return m
}

// Err returns f as an error, or nil when nothing was recorded.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Error implements the error interface.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, fe := range f {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
