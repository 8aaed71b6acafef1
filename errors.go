package defaults

import "fmt"

// Operation names the persister operation an error or log event belongs to.
type Operation string

const (
	OpSave  Operation = "save"
	OpLoad  Operation = "load"
	OpReset Operation = "reset"
)

// InvalidAttributeError reports a single-attribute selector naming an
// attribute outside the configured whitelist.
type InvalidAttributeError struct {
	Attribute string
	Op        Operation
}

func (e *InvalidAttributeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("defaults: %s: attribute %q is not configured", e.Op, e.Attribute)
}

func invalidAttribute(op Operation, name string) error {
	return &InvalidAttributeError{Attribute: name, Op: op}
}
