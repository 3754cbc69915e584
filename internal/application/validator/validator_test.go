package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
)

// fakeExecutor devolve resultados programados por comando de probe.
type fakeExecutor struct {
	results map[string]entity.ProbeResult
	calls   []string
}

func (f *fakeExecutor) Execute(_ context.Context, probe entity.Probe, _ *repository.TenantSession) entity.ProbeResult {
	f.calls = append(f.calls, probe.Command())
	if result, ok := f.results[probe.Command()]; ok {
		result.Probe = probe
		return result
	}
	return entity.FailedProbe(probe, entity.FailureAPIError, "unscripted probe")
}

func testDefinitions() []entity.IndicatorDefinition {
	return []entity.IndicatorDefinition{
		{
			IndicatorID: "net-segmentation",
			Version:     1,
			Category:    entity.CategoryNetwork,
			Probes: []entity.Probe{
				{Service: "ec2", Operation: "DescribeSubnets"},
				{Service: "ec2", Operation: "DescribeVpcs"},
			},
			Criteria: "multi_az_segmentation",
		},
		{
			IndicatorID: "iam-mfa",
			Version:     1,
			Category:    entity.CategoryIdentity,
			Probes: []entity.Probe{
				{Service: "iam", Operation: "GetAccountSummary"},
			},
			Criteria: "mfa_enforced",
		},
	}
}

func testSession() *repository.TenantSession {
	return &repository.TenantSession{
		AccountID: "123456789012",
		Tenant:    entity.Tenant{TenantID: "tenant-a"},
	}
}

func TestRegistryHighestVersionWins(t *testing.T) {
	defs := append(testDefinitions(), entity.IndicatorDefinition{
		IndicatorID: "iam-mfa",
		Version:     3,
		Category:    entity.CategoryIdentity,
		Probes:      []entity.Probe{{Service: "iam", Operation: "ListUsers"}},
		Criteria:    "federation_preferred",
	})

	registry := NewRegistry(defs, &fakeExecutor{}, zap.NewNop())

	def, ok := registry.Definition("iam-mfa")
	require.True(t, ok)
	assert.Equal(t, 3, def.Version)
	assert.Equal(t, "federation_preferred", def.Criteria)
}

func TestRegistryValidatorsFollowCanonicalOrder(t *testing.T) {
	registry := NewRegistry(testDefinitions(), &fakeExecutor{}, zap.NewNop())

	validators := registry.Validators()
	require.Len(t, validators, 2)
	assert.Equal(t, entity.CategoryNetwork, validators[0].Category())
	assert.Equal(t, entity.CategoryIdentity, validators[1].Category())
}

func TestRegistryDefaultIndicatorIDs(t *testing.T) {
	registry := NewRegistry(testDefinitions(), &fakeExecutor{}, zap.NewNop())
	assert.Equal(t, []string{"iam-mfa", "net-segmentation"}, registry.DefaultIndicatorIDs())
}

func TestCategoryValidatorSkipsUnownedIndicators(t *testing.T) {
	executor := &fakeExecutor{results: map[string]entity.ProbeResult{
		"ec2:DescribeSubnets": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"availability_zones": 3},
		}),
		"ec2:DescribeVpcs": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"vpc_count": 1},
		}),
	}}
	registry := NewRegistry(testDefinitions(), executor, zap.NewNop())

	network := registry.Validators()[0]
	results := network.Validate(context.Background(), testSession(), []string{"net-segmentation", "iam-mfa"})

	// iam-mfa pertence à categoria identity: o validador de network não o toca
	require.Len(t, results, 1)
	assert.Equal(t, "net-segmentation", results[0].IndicatorID)
	assert.NotContains(t, executor.calls, "iam:GetAccountSummary")
}

func TestCategoryValidatorContinuesPastProbeFailure(t *testing.T) {
	executor := &fakeExecutor{results: map[string]entity.ProbeResult{
		"ec2:DescribeVpcs": entity.SucceededProbe(entity.Probe{}, entity.ProbeData{
			Measures: map[string]float64{"availability_zones": 2},
		}),
	}}
	registry := NewRegistry(testDefinitions(), executor, zap.NewNop())

	network := registry.Validators()[0]
	results := network.Validate(context.Background(), testSession(), []string{"net-segmentation"})

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, 2, result.ProbesAttempted)
	assert.Equal(t, 1, result.ProbesSucceeded)
	assert.Equal(t, 1, result.ProbesFailed)
	assert.True(t, result.Assertion, "surviving probe still provides the passing measure")
	assert.Equal(t, entity.ConfidenceMedium, result.Confidence)
	assert.Len(t, result.Evidence, 2)
}

func TestCategoryValidatorEmptyEnabledList(t *testing.T) {
	executor := &fakeExecutor{}
	registry := NewRegistry(testDefinitions(), executor, zap.NewNop())

	network := registry.Validators()[0]
	results := network.Validate(context.Background(), testSession(), nil)

	assert.Empty(t, results)
	assert.Empty(t, executor.calls)
}
