package recolor

import (
	"errors"
)

var errNoBasis = errors.New("recolor: basis palette missing")

// DeriveColors compiles expression once and evaluates it for every basis
// slot, returning one color per slot. Each evaluation sees the slot through
// Bindings.Vars and must produce a value ToColor accepts.
func DeriveColors(evaluator Evaluator, store *PaletteStore, expression string) ([]Color, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if store == nil || store.Len() == 0 {
		return nil, errNoBasis
	}
	engine := evaluator.Engine()
	program, err := evaluator.Compile(expression)
	if err != nil {
		return nil, evaluationError(engine, expression, -1, err)
	}

	basis := store.BasisColors()
	colors := make([]Color, len(basis))
	for slot, base := range basis {
		label, _ := store.Label(slot)
		result, err := program.Eval(Bindings{Index: slot, Color: base, Label: label})
		if err != nil {
			return nil, evaluationError(engine, expression, slot, err)
		}
		c, err := ToColor(result)
		if err != nil {
			return nil, evaluationError(engine, expression, slot, err)
		}
		colors[slot] = c
	}
	return colors, nil
}
