package recolor

import (
	"errors"
	"fmt"
)

var errEmptyExpression = errors.New("expression must not be empty")

// EvaluationError reports a derive expression that failed to compile or to
// produce a color for one slot.
type EvaluationError struct {
	Engine     string
	Expression string
	// Slot is the basis slot being derived, -1 for compile failures.
	Slot int
	Err  error
}

func (e *EvaluationError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("recolor: %s: compile %q: %v", e.Engine, e.Expression, e.Err)
	}
	return fmt.Sprintf("recolor: %s: %q at slot %d: %v", e.Engine, e.Expression, e.Slot, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// evaluationError wraps err with engine, expression and slot. Errors that
// already carry that context pass through.
func evaluationError(engine, expression string, slot int, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	return &EvaluationError{Engine: engine, Expression: expression, Slot: slot, Err: err}
}
