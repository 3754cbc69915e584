// Package service holds the pure analysis functions that turn collected
// probe evidence into compliance assertions. Nothing in this package makes
// an external call: every verdict is fully derivable from the probe payloads
// and the documented criteria.
package service

import (
	"fmt"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// Assessment is the analyzer verdict for one indicator.
type Assessment struct {
	Assertion  bool
	Reason     string
	Confidence entity.Confidence
}

// Analyze computes the pass/fail assertion for an indicator from its probe
// results. When zero probes succeeded the assertion is always false with low
// confidence; the absence of evidence never defaults to a pass.
func Analyze(def entity.IndicatorDefinition, results []entity.ProbeResult) Assessment {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	if succeeded == 0 {
		return Assessment{
			Assertion:  false,
			Confidence: entity.ConfidenceLow,
			Reason: fmt.Sprintf("no checks could be completed for %s: all %d probes failed",
				def.IndicatorID, len(results)),
		}
	}

	measures := MergeMeasures(results)

	var assertion bool
	var detail string
	if def.Trigger != nil {
		assertion = def.Trigger.Evaluate(measures)
		detail = "composite trigger criteria"
	} else {
		assertion, detail = applyCriteria(def.Criteria, measures, succeeded)
	}

	verdict := "not satisfied"
	if assertion {
		verdict = "satisfied"
	}

	return Assessment{
		Assertion:  assertion,
		Confidence: confidenceFor(succeeded, len(results)-succeeded),
		Reason: fmt.Sprintf("%d/%d probes succeeded; %s %s",
			succeeded, len(results), detail, verdict),
	}
}

// MergeMeasures achata as medidas dos probes bem-sucedidos em um único mapa.
// Probes posteriores sobrescrevem chaves repetidas, seguindo a ordem
// declarada na definição do indicador.
func MergeMeasures(results []entity.ProbeResult) map[string]float64 {
	merged := make(map[string]float64)
	for _, r := range results {
		if !r.Success || r.Data == nil {
			continue
		}
		for k, v := range r.Data.Measures {
			merged[k] = v
		}
	}
	return merged
}

// confidenceFor grades the strength of the evidence. A single successful
// probe caps at medium; high requires at least two successful probes with no
// failed siblings, i.e. primary and secondary evidence corroborating the
// same collection.
func confidenceFor(succeeded, failed int) entity.Confidence {
	switch {
	case succeeded == 0:
		return entity.ConfidenceLow
	case succeeded >= 2 && failed == 0:
		return entity.ConfidenceHigh
	default:
		return entity.ConfidenceMedium
	}
}
