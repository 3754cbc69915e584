package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerExpressionEvaluate(t *testing.T) {
	measures := map[string]float64{
		"availability_zones": 3,
		"open_ingress_rules": 2,
		"trail_count":        1,
	}

	t.Run("single condition", func(t *testing.T) {
		expr := &TriggerExpression{Conditions: []TriggerCondition{
			{Measure: "availability_zones", Compare: CompareGreaterThan, Threshold: 1},
		}}
		assert.True(t, expr.Evaluate(measures))
	})

	t.Run("and chain", func(t *testing.T) {
		expr := &TriggerExpression{Conditions: []TriggerCondition{
			{Measure: "availability_zones", Compare: CompareGreaterThan, Threshold: 1},
			{Measure: "open_ingress_rules", Compare: CompareEquals, Threshold: 0, Operator: TriggerAnd},
		}}
		assert.False(t, expr.Evaluate(measures))
	})

	t.Run("or rescues a false seed", func(t *testing.T) {
		expr := &TriggerExpression{Conditions: []TriggerCondition{
			{Measure: "open_ingress_rules", Compare: CompareEquals, Threshold: 0},
			{Measure: "trail_count", Compare: CompareGreaterThan, Threshold: 0, Operator: TriggerOr},
		}}
		assert.True(t, expr.Evaluate(measures))
	})

	// A ordem das condições não é comutativa: `a OR b AND c` avalia como
	// `(a OR b) AND c`, nunca como `a OR (b AND c)`.
	t.Run("left to right is not commutative", func(t *testing.T) {
		a := TriggerCondition{Measure: "open_ingress_rules", Compare: CompareEquals, Threshold: 0}                         // false
		b := TriggerCondition{Measure: "trail_count", Compare: CompareGreaterThan, Threshold: 0, Operator: TriggerOr}     // true
		c := TriggerCondition{Measure: "availability_zones", Compare: CompareLessThan, Threshold: 2, Operator: TriggerAnd} // false

		aObAc := &TriggerExpression{Conditions: []TriggerCondition{a, b, c}}
		assert.False(t, aObAc.Evaluate(measures), "(false OR true) AND false")

		cAaOb := &TriggerExpression{Conditions: []TriggerCondition{c, {Measure: a.Measure, Compare: a.Compare, Threshold: a.Threshold, Operator: TriggerAnd}, b}}
		assert.True(t, cAaOb.Evaluate(measures), "(false AND false) OR true")
	})

	t.Run("missing measure makes the condition false", func(t *testing.T) {
		expr := &TriggerExpression{Conditions: []TriggerCondition{
			{Measure: "absent_measure", Compare: CompareGreaterThan, Threshold: 0},
		}}
		assert.False(t, expr.Evaluate(measures))
	})

	t.Run("missing operator defaults to and", func(t *testing.T) {
		expr := &TriggerExpression{Conditions: []TriggerCondition{
			{Measure: "availability_zones", Compare: CompareGreaterThan, Threshold: 1},
			{Measure: "open_ingress_rules", Compare: CompareEquals, Threshold: 0},
		}}
		assert.False(t, expr.Evaluate(measures))
	})

	t.Run("nil or empty expression never passes", func(t *testing.T) {
		var nilExpr *TriggerExpression
		assert.False(t, nilExpr.Evaluate(measures))
		assert.False(t, (&TriggerExpression{}).Evaluate(measures))
	})
}
