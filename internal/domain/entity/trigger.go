package entity

// TriggerOperator combines a condition's outcome with the accumulated result.
type TriggerOperator string

const (
	TriggerAnd TriggerOperator = "and"
	TriggerOr  TriggerOperator = "or"
)

// TriggerComparison compares a measure against a threshold.
type TriggerComparison string

const (
	CompareGreaterThan TriggerComparison = "gt"
	CompareLessThan    TriggerComparison = "lt"
	CompareEquals      TriggerComparison = "eq"
)

// TriggerCondition is one sub-condition over the merged probe measures.
// Operator tells how this condition combines with the result accumulated so
// far; the first condition's operator is ignored because it seeds the result.
type TriggerCondition struct {
	Measure   string            `json:"measure" yaml:"measure" toml:"measure"`
	Compare   TriggerComparison `json:"compare" yaml:"compare" toml:"compare"`
	Threshold float64           `json:"threshold" yaml:"threshold" toml:"threshold"`
	Operator  TriggerOperator   `json:"operator,omitempty" yaml:"operator" toml:"operator"`
}

// TriggerExpression composes sub-conditions into a single pass criterion.
//
// Evaluation is strictly left-to-right: the first condition seeds the result
// and each subsequent condition combines with its own operator. The order is
// NOT commutative: `a OR b AND c` evaluates as `(a OR b) AND c`, and that
// ordering is load-bearing for criteria migrated from older configurations,
// so it must be preserved exactly.
type TriggerExpression struct {
	Conditions []TriggerCondition `json:"conditions" yaml:"conditions" toml:"conditions"`
}

// Evaluate applies the expression to the merged measures of an indicator's
// successful probes.
func (e *TriggerExpression) Evaluate(measures map[string]float64) bool {
	if e == nil || len(e.Conditions) == 0 {
		return false
	}
	result := e.Conditions[0].holds(measures)
	for _, cond := range e.Conditions[1:] {
		switch cond.Operator {
		case TriggerOr:
			result = result || cond.holds(measures)
		default:
			// operador ausente ou "and" combinam por conjunção
			result = result && cond.holds(measures)
		}
	}
	return result
}

func (c TriggerCondition) holds(measures map[string]float64) bool {
	value, ok := measures[c.Measure]
	if !ok {
		return false
	}
	switch c.Compare {
	case CompareGreaterThan:
		return value > c.Threshold
	case CompareLessThan:
		return value < c.Threshold
	case CompareEquals:
		return value == c.Threshold
	default:
		return false
	}
}
