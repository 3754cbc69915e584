package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/application/validator"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

// --- dublês de teste ---

type fakeResolver struct {
	mu       sync.Mutex
	sessions map[string]*repository.TenantSession
	errs     map[string]error
	resolved []string
}

func (f *fakeResolver) Resolve(_ context.Context, tenantID string) (*repository.TenantSession, error) {
	f.mu.Lock()
	f.resolved = append(f.resolved, tenantID)
	f.mu.Unlock()
	if err, ok := f.errs[tenantID]; ok {
		return nil, err
	}
	if session, ok := f.sessions[tenantID]; ok {
		return session, nil
	}
	return nil, types.ErrTenantNotFound
}

func (f *fakeResolver) TestConnection(context.Context, string, string) error { return nil }

type fakeTenantRepo struct {
	tenants []entity.Tenant
	err     error
}

func (f *fakeTenantRepo) GetTenant(_ context.Context, tenantID string) (entity.Tenant, error) {
	for _, tenant := range f.tenants {
		if tenant.TenantID == tenantID {
			return tenant, nil
		}
	}
	return entity.Tenant{}, types.ErrTenantNotFound
}

func (f *fakeTenantRepo) ListActiveTenants(context.Context) ([]entity.Tenant, error) {
	return f.tenants, f.err
}

type fakeConfigRepo struct {
	configs map[string][]entity.TenantIndicatorConfig
	err     error
}

func (f *fakeConfigRepo) ListForTenant(_ context.Context, tenantID string) ([]entity.TenantIndicatorConfig, error) {
	return f.configs[tenantID], f.err
}

type fakeHistoryRepo struct {
	mu    sync.Mutex
	saved []entity.ExecutionRecord
	err   error
}

func (f *fakeHistoryRepo) Save(_ context.Context, record entity.ExecutionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeHistoryRepo) GetByExecution(context.Context, string) (entity.ExecutionRecord, error) {
	return entity.ExecutionRecord{}, fmt.Errorf("not implemented")
}

func (f *fakeHistoryRepo) ListByTenant(context.Context, string, time.Time, time.Time) ([]entity.ExecutionRecord, error) {
	return nil, nil
}

type scriptedExecutor struct {
	results map[string]entity.ProbeResult
}

func (f *scriptedExecutor) Execute(_ context.Context, probe entity.Probe, _ *repository.TenantSession) entity.ProbeResult {
	if result, ok := f.results[probe.Command()]; ok {
		result.Probe = probe
		return result
	}
	return entity.FailedProbe(probe, entity.FailureAPIError, "unscripted probe")
}

type noopConsole struct{}

func (noopConsole) Print(...interface{})                       {}
func (noopConsole) Printf(string, ...interface{})              {}
func (noopConsole) Println(...interface{})                     {}
func (noopConsole) LogInfo(string, ...interface{})             {}
func (noopConsole) LogWarning(string, ...interface{})          {}
func (noopConsole) LogError(string, ...interface{})            {}
func (noopConsole) LogSuccess(string, ...interface{})          {}
func (noopConsole) Status(string) types.StatusHandle           { return noopHandle{} }
func (noopConsole) Progress([]string) types.ProgressHandle     { return noopHandle{} }
func (noopConsole) ProgressWithTotal(int) types.ProgressHandle { return noopHandle{} }
func (noopConsole) CreateTable() types.TableInterface          { return &noopTable{} }

type noopHandle struct{}

func (noopHandle) Update(string) {}
func (noopHandle) Stop()         {}
func (noopHandle) Increment()    {}

type noopTable struct{}

func (*noopTable) AddColumn(string, ...interface{}) {}
func (*noopTable) AddRow(...interface{})            {}
func (*noopTable) Render() string                   { return "" }

// countingProgress conta incrementos sem sincronização própria: o detector
// de corrida acusa qualquer Increment feito fora do lock do RunFleet.
type countingProgress struct {
	increments int
	stopped    bool
}

func (p *countingProgress) Increment() { p.increments++ }
func (p *countingProgress) Stop()      { p.stopped = true }

type progressConsole struct {
	noopConsole
	progress *countingProgress
}

func (c progressConsole) ProgressWithTotal(int) types.ProgressHandle { return c.progress }

// --- fixture ---

func fixtureDefinitions() []entity.IndicatorDefinition {
	return []entity.IndicatorDefinition{
		{
			IndicatorID: "net-segmentation",
			Version:     1,
			Category:    entity.CategoryNetwork,
			Probes:      []entity.Probe{{Service: "ec2", Operation: "DescribeSubnets"}},
			Criteria:    "multi_az_segmentation",
		},
		{
			IndicatorID: "iam-mfa",
			Version:     1,
			Category:    entity.CategoryIdentity,
			Probes:      []entity.Probe{{Service: "iam", Operation: "GetAccountSummary"}},
			Criteria:    "mfa_enforced",
		},
	}
}

func passingExecutor() *scriptedExecutor {
	return &scriptedExecutor{results: map[string]entity.ProbeResult{
		"ec2:DescribeSubnets": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"availability_zones": 3},
		}),
		"iam:GetAccountSummary": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"account_mfa_enabled": 1},
		}),
	}}
}

func sessionFor(tenantID string) *repository.TenantSession {
	return &repository.TenantSession{
		AccountID: "123456789012",
		Tenant: entity.Tenant{
			TenantID:   tenantID,
			Kind:       entity.TenantKindExternal,
			AccessMode: entity.AccessModeCrossAccount,
			Status:     entity.TenantStatusActive,
		},
	}
}

func newTestUseCase(resolver *fakeResolver, tenantRepo *fakeTenantRepo, configRepo *fakeConfigRepo, historyRepo *fakeHistoryRepo, executor repository.ProbeExecutor) *ValidationUseCase {
	registry := validator.NewRegistry(fixtureDefinitions(), executor, zap.NewNop())
	uc := NewValidationUseCase(resolver, tenantRepo, configRepo, historyRepo, registry, noopConsole{}, zap.NewNop())
	// RunFleet chama newID de várias goroutines
	var counter atomic.Int64
	uc.newID = func() string {
		return fmt.Sprintf("exec-%04d", counter.Add(1))
	}
	uc.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return uc
}

// --- testes ---

func TestRunTenantHappyPath(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*repository.TenantSession{"tenant-a": sessionFor("tenant-a")}}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, &fakeConfigRepo{}, history, passingExecutor())

	record, err := uc.RunTenant(context.Background(), "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPass, record.Status)
	assert.Equal(t, "123456789012", record.AccountID)
	assert.Equal(t, entity.TenantKindExternal, record.TenantKind)
	require.Len(t, record.Results, 2)
	// resultados em ordem estável por indicador
	assert.Equal(t, "iam-mfa", record.Results[0].IndicatorID)
	assert.Equal(t, "net-segmentation", record.Results[1].IndicatorID)
	assert.Equal(t, 2, record.Summary.Passed)

	expectedTTL := uc.now().Add(entity.RetentionWindow).Unix()
	assert.Equal(t, expectedTTL, record.TTL)

	require.Len(t, history.saved, 1)
	assert.Equal(t, record.ExecutionID, history.saved[0].ExecutionID)
}

func TestRunTenantResolutionFailureYieldsErrorRecord(t *testing.T) {
	resolver := &fakeResolver{errs: map[string]error{"tenant-b": fmt.Errorf("assume role: %w", types.ErrAccessDenied)}}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, &fakeConfigRepo{}, history, passingExecutor())

	record, err := uc.RunTenant(context.Background(), "tenant-b")
	require.ErrorIs(t, err, types.ErrAccessDenied)

	assert.Equal(t, entity.StatusError, record.Status)
	assert.Contains(t, record.Error, "access to tenant account denied")
	assert.Empty(t, record.Results)

	// o registro de erro também vai para o histórico
	require.Len(t, history.saved, 1)
	assert.Equal(t, entity.StatusError, history.saved[0].Status)
}

func TestRunTenantHonorsDisabledIndicators(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*repository.TenantSession{"tenant-a": sessionFor("tenant-a")}}
	configRepo := &fakeConfigRepo{configs: map[string][]entity.TenantIndicatorConfig{
		"tenant-a": {
			{TenantID: "tenant-a", IndicatorID: "net-segmentation", Enabled: true},
			{TenantID: "tenant-a", IndicatorID: "iam-mfa", Enabled: false},
		},
	}}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, configRepo, history, passingExecutor())

	record, err := uc.RunTenant(context.Background(), "tenant-a")
	require.NoError(t, err)

	require.Len(t, record.Results, 1)
	assert.Equal(t, "net-segmentation", record.Results[0].IndicatorID)
}

func TestRunTenantFailedIndicatorFailsTheRun(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*repository.TenantSession{"tenant-a": sessionFor("tenant-a")}}
	executor := &scriptedExecutor{results: map[string]entity.ProbeResult{
		"ec2:DescribeSubnets": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"availability_zones": 1},
		}),
		"iam:GetAccountSummary": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"account_mfa_enabled": 1},
		}),
	}}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, &fakeConfigRepo{}, history, executor)

	record, err := uc.RunTenant(context.Background(), "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFail, record.Status)
	assert.Equal(t, 1, record.Summary.Failed)
	assert.Equal(t, 1, record.Summary.Passed)
}

func TestRunTenantCancelledRunIsNotPersisted(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*repository.TenantSession{"tenant-a": sessionFor("tenant-a")}}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, &fakeConfigRepo{}, history, passingExecutor())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.RunTenant(ctx, "tenant-a")
	require.ErrorIs(t, err, types.ErrRunIncomplete)
	assert.Empty(t, history.saved, "a cancelled run must not reach the history store")
}

func TestRunTenantPersistenceFailureSurfaces(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*repository.TenantSession{"tenant-a": sessionFor("tenant-a")}}
	history := &fakeHistoryRepo{err: types.ErrPersistenceFailure}
	uc := newTestUseCase(resolver, &fakeTenantRepo{}, &fakeConfigRepo{}, history, passingExecutor())

	record, err := uc.RunTenant(context.Background(), "tenant-a")
	require.ErrorIs(t, err, types.ErrPersistenceFailure)
	// o registro agregado ainda volta para o chamador reportar
	assert.Equal(t, entity.StatusPass, record.Status)
}

func TestRunFleetIsolatesTenantFailures(t *testing.T) {
	tenants := &fakeTenantRepo{tenants: []entity.Tenant{
		{TenantID: "tenant-a", Status: entity.TenantStatusActive},
		{TenantID: "tenant-b", Status: entity.TenantStatusActive},
		{TenantID: "tenant-c", Status: entity.TenantStatusActive},
	}}
	resolver := &fakeResolver{
		sessions: map[string]*repository.TenantSession{
			"tenant-a": sessionFor("tenant-a"),
			"tenant-c": sessionFor("tenant-c"),
		},
		errs: map[string]error{"tenant-b": fmt.Errorf("assume role: %w", types.ErrAccessDenied)},
	}
	history := &fakeHistoryRepo{}
	uc := newTestUseCase(resolver, tenants, &fakeConfigRepo{}, history, passingExecutor())
	progress := &countingProgress{}
	uc.console = progressConsole{progress: progress}

	records, err := uc.RunFleet(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, records, 3, "every tenant yields exactly one record")
	assert.Equal(t, "tenant-a", records[0].TenantID)
	assert.Equal(t, "tenant-b", records[1].TenantID)
	assert.Equal(t, "tenant-c", records[2].TenantID)
	assert.Equal(t, entity.StatusPass, records[0].Status)
	assert.Equal(t, entity.StatusError, records[1].Status)
	assert.Equal(t, entity.StatusPass, records[2].Status)

	assert.Equal(t, 3, progress.increments)
	assert.True(t, progress.stopped)
}

func TestRunFleetNoActiveTenants(t *testing.T) {
	uc := newTestUseCase(&fakeResolver{}, &fakeTenantRepo{}, &fakeConfigRepo{}, &fakeHistoryRepo{}, passingExecutor())

	records, err := uc.RunFleet(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
