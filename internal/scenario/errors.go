package scenario

import "fmt"

// UnknownClassError is raised when a component, agent or nested
// controller spec names a class the loader does not recognize.
type UnknownClassError struct {
	Kind  string // "component", "agent" or "controller"
	Class string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("scenario: unknown %s class %q", e.Kind, e.Class)
}

// MissingReferenceError is raised when a spec references another
// component/model by id and that id was never constructed.
type MissingReferenceError struct {
	Field string
	ID    string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("scenario: %s references unknown id %q", e.Field, e.ID)
}

// SchemaError is raised when a document is structurally malformed or a
// required field is missing from a spec.
type SchemaError struct {
	Context string
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("scenario: %s: %s", e.Context, e.Reason)
}
