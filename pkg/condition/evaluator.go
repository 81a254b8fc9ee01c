// Package condition evaluates the restricted boolean expressions that gate
// workflows and actions.
//
// The grammar covers boolean connectives (and/or/not, &&/||/!), comparisons
// (==, !=, <, <=, >, >=), membership (in), literals, and dotted-path lookups
// into the run context. Expressions are compiled by a hand-written lexer and
// recursive-descent parser; there is no general-purpose language evaluator
// behind this, so a condition can never reach I/O, functions, or anything
// outside the context it is handed.
package condition

import "log/slog"

// Evaluator evaluates condition strings fail-closed: any parse or evaluation
// error is logged and yields false. A broken condition suppresses a workflow
// or action, it never crashes the engine.
type Evaluator struct {
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger.With("module", "condition")}
}

// Evaluate returns the boolean value of expression against context. The empty
// expression is true (no gate). Errors never propagate.
func (e *Evaluator) Evaluate(expression string, context map[string]any) bool {
	if expression == "" {
		return true
	}

	expr, err := Parse(expression)
	if err != nil {
		e.logger.Warn("condition failed to parse, treating as false",
			"condition", expression, "error", err)

		return false
	}

	value, err := expr.Eval(context)
	if err != nil {
		e.logger.Warn("condition failed to evaluate, treating as false",
			"condition", expression, "error", err)

		return false
	}

	return Truthy(value)
}
