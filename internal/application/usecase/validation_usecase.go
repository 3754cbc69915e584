package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/cloudposture/aws-posture-validator-go/internal/application/validator"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

// DefaultFleetConcurrency limita quantos tenants são validados em paralelo
// quando o chamador não define outro valor.
const DefaultFleetConcurrency = 4

// ValidationUseCase orchestrates one validation run per tenant: resolve the
// tenant session, dispatch indicators to the category validators, aggregate
// the results, and persist one immutable execution record.
type ValidationUseCase struct {
	resolver    repository.SessionResolver
	tenantRepo  repository.TenantRepository
	configRepo  repository.IndicatorConfigRepository
	historyRepo repository.ExecutionHistoryRepository
	registry    *validator.Registry
	console     types.ConsoleInterface
	logger      *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewValidationUseCase creates a new validation use case.
func NewValidationUseCase(
	resolver repository.SessionResolver,
	tenantRepo repository.TenantRepository,
	configRepo repository.IndicatorConfigRepository,
	historyRepo repository.ExecutionHistoryRepository,
	registry *validator.Registry,
	console types.ConsoleInterface,
	logger *zap.Logger,
) *ValidationUseCase {
	return &ValidationUseCase{
		resolver:    resolver,
		tenantRepo:  tenantRepo,
		configRepo:  configRepo,
		historyRepo: historyRepo,
		registry:    registry,
		console:     console,
		logger:      logger.Named("validation"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// RunTenant executa uma validação completa para um tenant. Sempre devolve um
// registro de execução: falha de resolução de sessão vira um registro com
// status de erro em vez de abortar silenciosamente.
func (uc *ValidationUseCase) RunTenant(ctx context.Context, tenantID string) (entity.ExecutionRecord, error) {
	executionID := uc.newID()
	startedAt := uc.now().UTC()

	uc.logger.Info("validation run started",
		zap.String("execution_id", executionID),
		zap.String("tenant_id", tenantID))

	session, err := uc.resolver.Resolve(ctx, tenantID)
	if err != nil {
		uc.logger.Error("tenant session resolution failed",
			zap.String("execution_id", executionID),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		record := uc.errorRecord(executionID, tenantID, startedAt, err)
		if saveErr := uc.historyRepo.Save(ctx, record); saveErr != nil {
			uc.logger.Error("error record not persisted", zap.Error(saveErr))
		}
		return record, err
	}

	enabled, err := uc.enabledIndicators(ctx, tenantID)
	if err != nil {
		record := uc.errorRecord(executionID, tenantID, startedAt, err)
		if saveErr := uc.historyRepo.Save(ctx, record); saveErr != nil {
			uc.logger.Error("error record not persisted", zap.Error(saveErr))
		}
		return record, err
	}

	results := uc.dispatch(ctx, session, enabled)

	// Run cancelado no meio: nada de registro parcial no histórico.
	if ctx.Err() != nil {
		return entity.ExecutionRecord{}, fmt.Errorf("tenant %s: %w", tenantID, types.ErrRunIncomplete)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].IndicatorID < results[j].IndicatorID
	})

	summary, status := entity.Summarize(results)
	record := entity.ExecutionRecord{
		ExecutionID:      executionID,
		TenantID:         tenantID,
		AccountID:        session.AccountID,
		Timestamp:        startedAt.Format(time.RFC3339),
		Status:           status,
		Summary:          summary,
		Results:          results,
		TenantKind:       session.Tenant.Kind,
		OrganizationName: session.Tenant.OrganizationName,
		TTL:              startedAt.Add(entity.RetentionWindow).Unix(),
	}

	if err := uc.historyRepo.Save(ctx, record); err != nil {
		return record, err
	}

	uc.logger.Info("validation run finished",
		zap.String("execution_id", executionID),
		zap.String("tenant_id", tenantID),
		zap.String("status", string(status)),
		zap.Int("indicators", summary.Total))

	return record, nil
}

// RunFleet valida todos os tenants ativos com um pool limitado. A falha de um
// tenant nunca derruba os demais: cada tenant produz seu próprio registro.
func (uc *ValidationUseCase) RunFleet(ctx context.Context, concurrency int) ([]entity.ExecutionRecord, error) {
	if concurrency <= 0 {
		concurrency = DefaultFleetConcurrency
	}

	tenants, err := uc.tenantRepo.ListActiveTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active tenants: %w", err)
	}
	if len(tenants) == 0 {
		uc.console.LogWarning("No active tenants found; nothing to validate.")
		return nil, nil
	}

	uc.console.LogInfo("Validating %d active tenants (concurrency %d)", len(tenants), concurrency)
	progress := uc.console.ProgressWithTotal(len(tenants))
	defer progress.Stop()

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex
	records := make([]entity.ExecutionRecord, 0, len(tenants))

	for _, tenant := range tenants {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(tenantID string) {
			defer wg.Done()
			defer sem.Release(1)

			record, err := uc.RunTenant(ctx, tenantID)
			if err != nil {
				uc.logger.Warn("tenant validation failed",
					zap.String("tenant_id", tenantID),
					zap.Error(err))
			}
			if record.ExecutionID == "" {
				// run cancelado: não há registro a reportar
				return
			}
			// o handle de progresso não é seguro para uso concorrente;
			// compartilha o mutex da coleta de registros
			mu.Lock()
			records = append(records, record)
			progress.Increment()
			mu.Unlock()
		}(tenant.TenantID)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return records, fmt.Errorf("fleet run: %w", types.ErrRunIncomplete)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].TenantID < records[j].TenantID
	})
	return records, nil
}

// enabledIndicators resolve o conjunto de indicadores do tenant: os
// habilitados na configuração ou, sem configuração alguma, o conjunto padrão
// completo.
func (uc *ValidationUseCase) enabledIndicators(ctx context.Context, tenantID string) ([]string, error) {
	configs, err := uc.configRepo.ListForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading indicator configuration for tenant %s: %w", tenantID, err)
	}
	if len(configs) == 0 {
		uc.logger.Debug("tenant has no indicator configuration, using default set",
			zap.String("tenant_id", tenantID))
		return uc.registry.DefaultIndicatorIDs(), nil
	}

	var enabled []string
	for _, cfg := range configs {
		if cfg.Enabled {
			enabled = append(enabled, cfg.IndicatorID)
		}
	}
	sort.Strings(enabled)
	return enabled, nil
}

// dispatch entrega a lista de indicadores a cada validador de categoria em
// paralelo e agrega os resultados. Um validador que entre em pânico degrada
// para resultados de baixa confiança dos indicadores que ele possui, sem
// derrubar o run.
func (uc *ValidationUseCase) dispatch(ctx context.Context, session *repository.TenantSession, enabled []string) []entity.IndicatorResult {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []entity.IndicatorResult

	for _, v := range uc.registry.Validators() {
		wg.Add(1)
		go func(v validator.CategoryValidator) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					uc.logger.Error("category validator panicked",
						zap.String("category", string(v.Category())),
						zap.Any("panic", r))
					degraded := uc.degradedResults(v.Category(), enabled)
					mu.Lock()
					results = append(results, degraded...)
					mu.Unlock()
				}
			}()

			categoryResults := v.Validate(ctx, session, enabled)

			mu.Lock()
			results = append(results, categoryResults...)
			mu.Unlock()
		}(v)
	}

	wg.Wait()
	return results
}

// degradedResults materializa a falha de um validador inteiro como asserções
// falsas de baixa confiança, uma por indicador habilitado daquela categoria.
func (uc *ValidationUseCase) degradedResults(category entity.Category, enabled []string) []entity.IndicatorResult {
	timestamp := uc.now().UTC().Format(time.RFC3339)
	var degraded []entity.IndicatorResult
	for _, indicatorID := range enabled {
		def, ok := uc.registry.Definition(indicatorID)
		if !ok || def.Category != category {
			continue
		}
		degraded = append(degraded, entity.IndicatorResult{
			IndicatorID:      def.IndicatorID,
			Version:          def.Version,
			Category:         category,
			Assertion:        false,
			Reason:           fmt.Sprintf("%s: %s", types.ErrPartialCategoryFailure.Error(), category),
			Confidence:       entity.ConfidenceLow,
			ProbesAttempted:  len(def.Probes),
			ProbesSucceeded:  0,
			ProbesFailed:     len(def.Probes),
			ValidationMethod: "automated",
			Timestamp:        timestamp,
		})
	}
	return degraded
}

// errorRecord monta o registro de execução para um run que falhou antes de
// qualquer probe rodar.
func (uc *ValidationUseCase) errorRecord(executionID, tenantID string, startedAt time.Time, cause error) entity.ExecutionRecord {
	return entity.ExecutionRecord{
		ExecutionID: executionID,
		TenantID:    tenantID,
		Timestamp:   startedAt.Format(time.RFC3339),
		Status:      entity.StatusError,
		Error:       cause.Error(),
		TTL:         startedAt.Add(entity.RetentionWindow).Unix(),
	}
}
