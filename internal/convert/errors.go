package convert

import (
	"errors"
	"fmt"
)

// Direction names the way a conversion runs.
type Direction string

// Conversion directions.
const (
	PsiToIntact Direction = "psi-to-intact"
	IntactToPsi Direction = "intact-to-psi"
)

// ErrInconsistentEntry is wrapped by every InconsistencyError.
var ErrInconsistentEntry = errors.New("converted entry is inconsistent with its source")

// ConversionError reports malformed input. Path locates the offending node,
// e.g. "entry/interaction[4]/participant[5]".
type ConversionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := "convert"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InconsistencyError reports that a converted entry does not hold the same
// number of non-redundant objects of one kind as its source.
type InconsistencyError struct {
	Direction Direction
	Kind      string
	Source    int
	Target    int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: %s: %d %s in source, %d after conversion",
		ErrInconsistentEntry, e.Direction, e.Source, e.Kind, e.Target)
}

func (e *InconsistencyError) Unwrap() error { return ErrInconsistentEntry }
