package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("all assertions true yields pass", func(t *testing.T) {
		summary, status := Summarize([]IndicatorResult{
			{IndicatorID: "a", Assertion: true},
			{IndicatorID: "b", Assertion: true},
		})
		assert.Equal(t, StatusPass, status)
		assert.Equal(t, ExecutionSummary{Total: 2, Passed: 2}, summary)
	})

	t.Run("one false assertion fails the run", func(t *testing.T) {
		summary, status := Summarize([]IndicatorResult{
			{IndicatorID: "a", Assertion: true},
			{IndicatorID: "b", Assertion: false},
			{IndicatorID: "c", Assertion: true},
		})
		assert.Equal(t, StatusFail, status)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 2, summary.Passed)
		assert.Equal(t, 1, summary.Failed)
	})

	t.Run("empty run passes vacuously", func(t *testing.T) {
		summary, status := Summarize(nil)
		assert.Equal(t, StatusPass, status)
		assert.Zero(t, summary.Total)
	})
}

func TestExecutionRecordExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, ExecutionRecord{TTL: now.Add(-time.Hour).Unix()}.Expired(now))
	assert.False(t, ExecutionRecord{TTL: now.Add(time.Hour).Unix()}.Expired(now))

	// TTL zero significa registro sem expiração configurada
	assert.False(t, ExecutionRecord{}.Expired(now))
}
