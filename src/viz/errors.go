package viz

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three ways a dataset can be unplottable. Callers
// match them with errors.Is; the order of checks in BuildSeries fixes which
// one wins when several apply.
var (
	ErrEmptyInput      = errors.New("no data to plot")
	ErrNoValidYears    = errors.New("no valid years")
	ErrNoNumericValues = errors.New("no numeric values to plot")
)

// DrawError wraps a backend failure with the rendering phase it happened in.
type DrawError struct {
	Op  string
	Err error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("draw %s: %v", e.Op, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }
