package translator

import (
	"github.com/Knetic/govaluate"
)

// Formula is an arithmetic expression over a single variable x, e.g. "x * 255 / 254".
// An empty formula is the identity.
type Formula string

// Eval returns x unchanged when the formula is empty or does not evaluate to a number.
func (f Formula) Eval(x float64) float64 {
	if f == "" {
		return x
	}
	expression, err := govaluate.NewEvaluableExpression(string(f))
	if err != nil {
		return x
	}
	parameters := make(map[string]interface{}, 1)
	parameters["x"] = x

	result, err := expression.Evaluate(parameters)
	if err != nil {
		return x
	}

	if val, ok := result.(float64); ok {
		return val
	}
	return x
}

// Validate reports whether the formula parses.
func (f Formula) Validate() error {
	if f == "" {
		return nil
	}
	_, err := govaluate.NewEvaluableExpression(string(f))
	return err
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
