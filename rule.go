package pennant

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Operator identifies a targeting-rule predicate.
type Operator string

const (
	OperatorEquals      Operator = "EQUALS"
	OperatorNotEquals   Operator = "NOT_EQUALS"
	OperatorContains    Operator = "CONTAINS"
	OperatorNotContains Operator = "NOT_CONTAINS"
	OperatorStartsWith  Operator = "STARTS_WITH"
	OperatorEndsWith    Operator = "ENDS_WITH"
	OperatorGreaterThan Operator = "GREATER_THAN"
	OperatorLessThan    Operator = "LESS_THAN"
	OperatorInList      Operator = "IN_LIST"
	OperatorNotInList   Operator = "NOT_IN_LIST"
	OperatorMatches     Operator = "MATCHES"
)

// TargetingRule is a single predicate over one context attribute. Rules are
// immutable once constructed and evaluation is pure.
//
// A missing attribute is never an error: the rule simply does not match.
// GREATER_THAN and LESS_THAN require numbers on both sides; a non-numeric
// operand fails the rule and reports a *RuleTypeMismatchError; evaluation
// of the surrounding context continues with the rule counted as a non-match.
type TargetingRule struct {
	Attribute string
	Operator  Operator
	Value     Value
	Metadata  map[string]string
}

// NewRule builds a rule for the given attribute, operator and operand.
func NewRule(attribute string, op Operator, value Value) TargetingRule {
	return TargetingRule{Attribute: attribute, Operator: op, Value: value}
}

// Evaluate applies the rule against the attribute set. The boolean is the
// match result; the error, when non-nil, explains why a rule could not be
// applied (type mismatch, bad pattern). A rule that errors never matches.
func (r TargetingRule) Evaluate(attrs Attributes) (bool, error) {
	attr, ok := attrs[r.Attribute]
	if !ok {
		// Missing attribute = no match.
		return false, nil
	}

	switch r.Operator {
	case OperatorEquals:
		return attr.Equal(r.Value), nil

	case OperatorNotEquals:
		return !attr.Equal(r.Value), nil

	case OperatorContains:
		return strings.Contains(attr.String(), r.Value.String()), nil

	case OperatorNotContains:
		return !strings.Contains(attr.String(), r.Value.String()), nil

	case OperatorStartsWith:
		return strings.HasPrefix(attr.String(), r.Value.String()), nil

	case OperatorEndsWith:
		return strings.HasSuffix(attr.String(), r.Value.String()), nil

	case OperatorGreaterThan:
		return r.compare(attr, func(a, b float64) bool { return a > b })

	case OperatorLessThan:
		return r.compare(attr, func(a, b float64) bool { return a < b })

	case OperatorInList:
		return r.membership(attr)

	case OperatorNotInList:
		matched, err := r.membership(attr)
		if err != nil {
			return false, err
		}
		return !matched, nil

	case OperatorMatches:
		return r.matches(attr)

	default:
		return false, fmt.Errorf("unsupported operator: %s", r.Operator)
	}
}

func (r TargetingRule) compare(attr Value, cmp func(a, b float64) bool) (bool, error) {
	a, aOK := attr.AsNumber()
	b, bOK := r.Value.AsNumber()
	if !aOK {
		return false, &RuleTypeMismatchError{
			Attribute: r.Attribute,
			Operator:  r.Operator,
			Want:      KindNumber,
			Got:       attr.Kind(),
		}
	}
	if !bOK {
		return false, &RuleTypeMismatchError{
			Attribute: r.Attribute,
			Operator:  r.Operator,
			Want:      KindNumber,
			Got:       r.Value.Kind(),
		}
	}
	return cmp(a, b), nil
}

func (r TargetingRule) membership(attr Value) (bool, error) {
	items, ok := r.Value.AsList()
	if !ok {
		return false, &RuleTypeMismatchError{
			Attribute: r.Attribute,
			Operator:  r.Operator,
			Want:      KindList,
			Got:       r.Value.Kind(),
		}
	}
	for _, item := range items {
		if attr.Equal(item) {
			return true, nil
		}
	}
	return false, nil
}

func (r TargetingRule) matches(attr Value) (bool, error) {
	program, err := compilePattern(r.Value.String())
	if err != nil {
		return false, fmt.Errorf("failed to compile pattern %q: %w", r.Value.String(), err)
	}

	result, err := expr.Run(program, map[string]any{"value": attr.String()})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate pattern %q: %w", r.Value.String(), err)
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("pattern evaluation returned non-boolean: %T", result)
	}
	return matched, nil
}

// Compiled MATCHES programs are shared across rules; patterns repeat heavily
// in steady state.
var programCache sync.Map // pattern string -> *vm.Program

func compilePattern(pattern string) (*vm.Program, error) {
	if cached, ok := programCache.Load(pattern); ok {
		return cached.(*vm.Program), nil
	}

	exprStr := fmt.Sprintf(`value matches %q`, pattern)
	program, err := expr.Compile(exprStr, expr.Env(map[string]any{"value": ""}))
	if err != nil {
		return nil, err
	}

	programCache.Store(pattern, program)
	return program, nil
}
