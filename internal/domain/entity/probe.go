package entity

// FailureReason classifies why a probe could not produce evidence.
type FailureReason string

const (
	FailureTimeout      FailureReason = "timeout"
	FailureParseError   FailureReason = "parse_error"
	FailureAccessDenied FailureReason = "access_denied"
	FailureAPIError     FailureReason = "api_error"
)

// ProbeData is the structured payload of a successful probe. Measures holds
// the deterministic quantities the analyzers read (documented per operation
// in the executor's call table); Details carries a bounded sample of resource
// identifiers kept as evidence.
type ProbeData struct {
	Measures map[string]float64 `json:"measures" dynamodbav:"measures"`
	Details  []string           `json:"details,omitempty" dynamodbav:"details,omitempty"`
}

// Measure returns a named measure, zero when absent.
func (d *ProbeData) Measure(name string) float64 {
	if d == nil || d.Measures == nil {
		return 0
	}
	return d.Measures[name]
}

// ProbeFailure is the failure arm of a probe result.
type ProbeFailure struct {
	Reason  FailureReason `json:"reason" dynamodbav:"reason"`
	Message string        `json:"message" dynamodbav:"message"`
}

// ProbeResult records one probe execution. Exactly one of Data and Failure is
// set: Data when Success is true, Failure otherwise. Results are ephemeral on
// their own and are folded into an IndicatorResult as evidence.
type ProbeResult struct {
	Probe   Probe         `json:"probe" dynamodbav:"probe"`
	Success bool          `json:"success" dynamodbav:"success"`
	Data    *ProbeData    `json:"data,omitempty" dynamodbav:"data,omitempty"`
	Failure *ProbeFailure `json:"failure,omitempty" dynamodbav:"failure,omitempty"`
}

// SucceededProbe monta o braço de sucesso da união.
func SucceededProbe(p Probe, data ProbeData) ProbeResult {
	return ProbeResult{Probe: p, Success: true, Data: &data}
}

// FailedProbe monta o braço de falha da união.
func FailedProbe(p Probe, reason FailureReason, message string) ProbeResult {
	return ProbeResult{Probe: p, Success: false, Failure: &ProbeFailure{Reason: reason, Message: message}}
}
