package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/daryako/cascade/pkg/template"
)

type logicalOp int

const (
	opAnd logicalOp = iota
	opOr
)

type compareOp int

const (
	opEq compareOp = iota
	opNeq
	opLt
	opLte
	opGt
	opGte
	opIn
)

type literalExpr struct {
	value any
}

func (e *literalExpr) Eval(map[string]any) (any, error) {
	return e.value, nil
}

type pathExpr struct {
	path string
}

// Eval resolves the dotted path; missing keys yield nil, not an error, so a
// bare reference to an absent value is simply falsy.
func (e *pathExpr) Eval(context map[string]any) (any, error) {
	return template.Lookup(context, e.path), nil
}

type notExpr struct {
	inner Expr
}

func (e *notExpr) Eval(context map[string]any) (any, error) {
	value, err := e.inner.Eval(context)
	if err != nil {
		return nil, err
	}

	return !Truthy(value), nil
}

type logicalExpr struct {
	op    logicalOp
	left  Expr
	right Expr
}

func (e *logicalExpr) Eval(context map[string]any) (any, error) {
	left, err := e.left.Eval(context)
	if err != nil {
		return nil, err
	}

	// Short-circuit before touching the right-hand side.
	if e.op == opAnd && !Truthy(left) {
		return false, nil
	}

	if e.op == opOr && Truthy(left) {
		return true, nil
	}

	right, err := e.right.Eval(context)
	if err != nil {
		return nil, err
	}

	return Truthy(right), nil
}

type compareExpr struct {
	op    compareOp
	left  Expr
	right Expr
}

func (e *compareExpr) Eval(context map[string]any) (any, error) {
	left, err := e.left.Eval(context)
	if err != nil {
		return nil, err
	}

	right, err := e.right.Eval(context)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case opEq:
		return equal(left, right), nil
	case opNeq:
		return !equal(left, right), nil
	case opIn:
		return contains(left, right)
	default:
		return order(e.op, left, right)
	}
}

// Truthy follows the original engine's semantics: nil, false, zero, the empty
// string, and empty collections are false; everything else is true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		if f, ok := toFloat(value); ok {
			return f != 0
		}

		return true
	}
}

func equal(left, right any) bool {
	if lf, ok := toFloat(left); ok {
		if rf, ok := toFloat(right); ok {
			return lf == rf
		}

		return false
	}

	return reflect.DeepEqual(left, right)
}

// contains implements `needle in haystack`: substring for strings, membership
// for lists, key presence for maps.
func contains(needle, haystack any) (bool, error) {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("'in' on a string requires a string needle, got %T", needle)
		}

		return strings.Contains(h, n), nil
	case []any:
		for _, item := range h {
			if equal(needle, item) {
				return true, nil
			}
		}

		return false, nil
	case map[string]any:
		key, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("'in' on a map requires a string key, got %T", needle)
		}

		_, present := h[key]

		return present, nil
	default:
		return false, fmt.Errorf("'in' requires a string, list, or map on the right, got %T", haystack)
	}
}

func order(op compareOp, left, right any) (bool, error) {
	if lf, lok := toFloat(left); lok {
		rf, rok := toFloat(right)
		if !rok {
			return false, fmt.Errorf("cannot compare number with %T", right)
		}

		return applyOrder(op, compareFloats(lf, rf)), nil
	}

	if ls, lok := left.(string); lok {
		rs, rok := right.(string)
		if !rok {
			return false, fmt.Errorf("cannot compare string with %T", right)
		}

		return applyOrder(op, strings.Compare(ls, rs)), nil
	}

	return false, fmt.Errorf("cannot order values of type %T and %T", left, right)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyOrder(op compareOp, cmp int) bool {
	switch op {
	case opLt:
		return cmp < 0
	case opLte:
		return cmp <= 0
	case opGt:
		return cmp > 0
	case opGte:
		return cmp >= 0
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func parseNumber(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}
