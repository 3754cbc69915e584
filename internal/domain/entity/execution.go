package entity

import "time"

// Confidence is the qualitative strength of the evidence behind an assertion.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ExecutionStatus is the overall outcome of one validation run.
type ExecutionStatus string

const (
	StatusPass  ExecutionStatus = "pass"
	StatusFail  ExecutionStatus = "fail"
	StatusError ExecutionStatus = "error"
)

// IndicatorResult is the outcome of one indicator within one execution.
// Created once per (execution, indicator) pair and never mutated.
type IndicatorResult struct {
	IndicatorID      string        `json:"indicator_id" dynamodbav:"indicator_id"`
	Version          int           `json:"version" dynamodbav:"version"`
	Category         Category      `json:"category" dynamodbav:"category"`
	Assertion        bool          `json:"assertion" dynamodbav:"assertion"`
	Reason           string        `json:"reason" dynamodbav:"reason"`
	Confidence       Confidence    `json:"confidence" dynamodbav:"confidence"`
	ProbesAttempted  int           `json:"probes_attempted" dynamodbav:"probes_attempted"`
	ProbesSucceeded  int           `json:"probes_succeeded" dynamodbav:"probes_succeeded"`
	ProbesFailed     int           `json:"probes_failed" dynamodbav:"probes_failed"`
	Evidence         []ProbeResult `json:"evidence,omitempty" dynamodbav:"evidence,omitempty"`
	ValidationMethod string        `json:"validation_method" dynamodbav:"validation_method"`
	Timestamp        string        `json:"timestamp" dynamodbav:"timestamp"`
}

// ExecutionSummary aggregates the indicator results of one run.
type ExecutionSummary struct {
	Total  int `json:"total" dynamodbav:"total"`
	Passed int `json:"passed" dynamodbav:"passed"`
	Failed int `json:"failed" dynamodbav:"failed"`
	Errors int `json:"errors" dynamodbav:"errors"`
}

// ExecutionRecord is the durable record of one orchestrator invocation for
// one tenant. Write-once: an execution identifier is never overwritten, and
// the record carries a TTL after which the retention sweep may purge it.
type ExecutionRecord struct {
	ExecutionID      string            `json:"execution_id" dynamodbav:"execution_id"`
	TenantID         string            `json:"tenant_id" dynamodbav:"tenant_id"`
	AccountID        string            `json:"account_id" dynamodbav:"account_id"`
	Timestamp        string            `json:"timestamp" dynamodbav:"timestamp"`
	Status           ExecutionStatus   `json:"status" dynamodbav:"status"`
	Summary          ExecutionSummary  `json:"summary" dynamodbav:"summary"`
	Results          []IndicatorResult `json:"results" dynamodbav:"results"`
	TenantKind       TenantKind        `json:"tenant_kind,omitempty" dynamodbav:"tenant_kind,omitempty"`
	OrganizationName string            `json:"organization_name,omitempty" dynamodbav:"organization_name,omitempty"`
	Error            string            `json:"error,omitempty" dynamodbav:"error,omitempty"`
	TTL              int64             `json:"ttl" dynamodbav:"ttl"`
}

// RetentionWindow is how long execution records stay readable before the
// retention sweep may delete them.
const RetentionWindow = 90 * 24 * time.Hour

// Summarize recomputa o sumário e o status geral a partir dos resultados:
// pass somente quando toda asserção é verdadeira.
func Summarize(results []IndicatorResult) (ExecutionSummary, ExecutionStatus) {
	summary := ExecutionSummary{Total: len(results)}
	for _, r := range results {
		if r.Assertion {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	status := StatusPass
	if summary.Failed > 0 {
		status = StatusFail
	}
	return summary, status
}

// Expired reports whether the record's TTL has elapsed at the given instant.
// Expired records are excluded from normal reads; deletion itself is the
// retention sweep's job, never the write path's.
func (r ExecutionRecord) Expired(now time.Time) bool {
	return r.TTL > 0 && r.TTL < now.Unix()
}
