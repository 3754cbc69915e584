package repository

import (
	"context"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// IndicatorConfigRepository reads the per-tenant indicator overrides keyed by
// (tenant_id, indicator_id). An empty result means the tenant runs with the
// default indicator set.
type IndicatorConfigRepository interface {
	ListForTenant(ctx context.Context, tenantID string) ([]entity.TenantIndicatorConfig, error)
}

// DefinitionRepository loads indicator definitions at process start. An empty
// path yields the built-in definitions; a TOML, YAML, or JSON file overlays
// them, higher versions winning per indicator id.
type DefinitionRepository interface {
	LoadDefinitions(filePath string) ([]entity.IndicatorDefinition, error)
}
