// Package validator dispatches indicators to the category that owns them.
// Each security category holds an immutable registry of indicator → probe
// list built at process start from the loaded definitions, so adding or
// changing an indicator never touches dispatch code.
package validator

import (
	"context"
	"time"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/service"
	"go.uber.org/zap"
)

// CategoryValidator executes every indicator it owns out of a requested set.
// Indicators outside the validator's category are silently skipped: the
// orchestrator hands the same list to every validator and only the owner
// may act on an entry.
type CategoryValidator interface {
	Category() entity.Category
	Validate(ctx context.Context, session *repository.TenantSession, enabled []string) []entity.IndicatorResult
}

type categoryValidator struct {
	category entity.Category
	defs     map[string]entity.IndicatorDefinition
	executor repository.ProbeExecutor
	logger   *zap.Logger
}

func (v *categoryValidator) Category() entity.Category {
	return v.category
}

// Validate runs all probes for each owned indicator and folds the evidence
// through the category analyzer. One failing probe never aborts its
// siblings; the failure simply joins the evidence.
func (v *categoryValidator) Validate(ctx context.Context, session *repository.TenantSession, enabled []string) []entity.IndicatorResult {
	var results []entity.IndicatorResult

	for _, indicatorID := range enabled {
		def, ok := v.defs[indicatorID]
		if !ok {
			// não é nosso: outro validador é o dono deste indicador
			continue
		}

		v.logger.Info("validating indicator",
			zap.String("indicator_id", def.IndicatorID),
			zap.String("category", string(v.category)),
			zap.String("tenant_id", session.Tenant.TenantID),
		)

		evidence := make([]entity.ProbeResult, 0, len(def.Probes))
		succeeded, failed := 0, 0
		for _, probe := range def.Probes {
			result := v.executor.Execute(ctx, probe, session)
			if result.Success {
				succeeded++
			} else {
				failed++
			}
			evidence = append(evidence, result)
		}

		assessment := service.Analyze(def, evidence)

		results = append(results, entity.IndicatorResult{
			IndicatorID:      def.IndicatorID,
			Version:          def.Version,
			Category:         v.category,
			Assertion:        assessment.Assertion,
			Reason:           assessment.Reason,
			Confidence:       assessment.Confidence,
			ProbesAttempted:  len(def.Probes),
			ProbesSucceeded:  succeeded,
			ProbesFailed:     failed,
			Evidence:         evidence,
			ValidationMethod: "automated",
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
		})
	}

	return results
}
