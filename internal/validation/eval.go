package validation

import "fmt"

// EvalFilter reports whether doc satisfies expr. Both the MCP
// document_search tool and the daemon's document.search handler walk
// the projected document map directly rather than any on-disk facet
// table: there is no query executor wired to those tables, so this is
// a linear, filter-only scan, not an indexed lookup.
func EvalFilter(expr *FilterExpr, doc map[string]any) bool {
	if expr == nil {
		return true
	}
	if expr.And {
		return EvalFilter(expr.Left, doc) && EvalFilter(expr.Right, doc)
	}
	if expr.Or {
		return EvalFilter(expr.Left, doc) || EvalFilter(expr.Right, doc)
	}

	value, present := doc[expr.Attribute]
	switch expr.Op {
	case OpExists:
		return present
	case OpNotExists:
		return !present
	case OpIn:
		return present && containsAny(value, expr.Values)
	case OpNotIn:
		return !present || !containsAny(value, expr.Values)
	case OpEqual:
		return present && valueEquals(value, expr.Value)
	case OpNotEqual:
		return !present || !valueEquals(value, expr.Value)
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return present && compareValue(value, expr.Value, expr.Op)
	default:
		return false
	}
}

func containsAny(value any, candidates []string) bool {
	for _, c := range candidates {
		if valueEquals(value, c) {
			return true
		}
	}
	return false
}

// valueEquals compares a projected JSON value against a filter literal,
// matching by number when both sides parse as one, else by string form.
func valueEquals(value any, literal string) bool {
	if lf, ok := ValueAsFloat(literal); ok {
		if vf, ok := numericValue(value); ok {
			return vf == lf
		}
	}
	return fmt.Sprintf("%v", value) == literal
}

func compareValue(value any, literal string, op FilterOp) bool {
	lf, ok := ValueAsFloat(literal)
	if !ok {
		return false
	}
	vf, ok := numericValue(value)
	if !ok {
		return false
	}
	switch op {
	case OpGreaterThan:
		return vf > lf
	case OpGreaterOrEqual:
		return vf >= lf
	case OpLessThan:
		return vf < lf
	case OpLessOrEqual:
		return vf <= lf
	default:
		return false
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case fmt.Stringer:
		return ValueAsFloat(v.String())
	default:
		return ValueAsFloat(fmt.Sprintf("%v", v))
	}
}
