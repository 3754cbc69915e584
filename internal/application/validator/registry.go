package validator

import (
	"sort"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"go.uber.org/zap"
)

// Registry holds one CategoryValidator per security category, keyed by the
// category tag. It is built once from the loaded indicator definitions and
// immutable afterwards.
type Registry struct {
	validators map[entity.Category]CategoryValidator
	defs       map[string]entity.IndicatorDefinition
}

// NewRegistry agrupa as definições por categoria e constrói um validador por
// categoria. Para versões repetidas de um mesmo indicador, a maior versão
// vence.
func NewRegistry(defs []entity.IndicatorDefinition, executor repository.ProbeExecutor, logger *zap.Logger) *Registry {
	latest := make(map[string]entity.IndicatorDefinition, len(defs))
	for _, def := range defs {
		if current, ok := latest[def.IndicatorID]; !ok || def.Version > current.Version {
			latest[def.IndicatorID] = def
		}
	}

	byCategory := make(map[entity.Category]map[string]entity.IndicatorDefinition)
	for _, def := range latest {
		if byCategory[def.Category] == nil {
			byCategory[def.Category] = make(map[string]entity.IndicatorDefinition)
		}
		byCategory[def.Category][def.IndicatorID] = def
	}

	validators := make(map[entity.Category]CategoryValidator, len(byCategory))
	for category, owned := range byCategory {
		validators[category] = &categoryValidator{
			category: category,
			defs:     owned,
			executor: executor,
			logger:   logger.Named(string(category)),
		}
	}

	return &Registry{validators: validators, defs: latest}
}

// Validators returns every registered category validator in the canonical
// category order, skipping categories with no definitions.
func (r *Registry) Validators() []CategoryValidator {
	out := make([]CategoryValidator, 0, len(r.validators))
	for _, category := range entity.Categories() {
		if v, ok := r.validators[category]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Definition returns the effective (highest-version) definition for an
// indicator id.
func (r *Registry) Definition(indicatorID string) (entity.IndicatorDefinition, bool) {
	def, ok := r.defs[indicatorID]
	return def, ok
}

// DefaultIndicatorIDs lists every known indicator id in stable order; used
// when a tenant has no configuration rows and falls back to the full
// default set.
func (r *Registry) DefaultIndicatorIDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
