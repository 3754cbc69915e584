package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

func tableConfig() types.TableConfig {
	return types.TableConfig{
		TenantMetadata:   "tenants",
		IndicatorConfigs: "indicator-configs",
	}
}

func TestGetTenant(t *testing.T) {
	tenant := entity.Tenant{
		TenantID:   "tenant-a",
		Kind:       entity.TenantKindExternal,
		AccessMode: entity.AccessModeCrossAccount,
		RoleARN:    "arn:aws:iam::123456789012:role/posture-delegate",
		ExternalID: "token-1",
		Status:     entity.TenantStatusActive,
	}
	item, err := attributevalue.MarshalMap(tenant)
	require.NoError(t, err)

	repo := NewTenantRepository(&fakeDynamoDB{getOutput: &dynamodb.GetItemOutput{Item: item}}, tableConfig(), zap.NewNop())

	got, err := repo.GetTenant(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, tenant, got)
}

func TestGetTenantNotFound(t *testing.T) {
	repo := NewTenantRepository(&fakeDynamoDB{}, tableConfig(), zap.NewNop())

	_, err := repo.GetTenant(context.Background(), "ghost")
	require.ErrorIs(t, err, types.ErrTenantNotFound)
}

func TestListActiveTenantsFiltersByStatusAlias(t *testing.T) {
	active := entity.Tenant{TenantID: "tenant-a", Status: entity.TenantStatusActive}
	item, err := attributevalue.MarshalMap(active)
	require.NoError(t, err)

	client := &fakeDynamoDB{scanOuts: []*dynamodb.ScanOutput{
		{Items: []map[string]ddbTypes.AttributeValue{item}},
	}}
	repo := NewTenantRepository(client, tableConfig(), zap.NewNop())

	tenants, err := repo.ListActiveTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "tenant-a", tenants[0].TenantID)

	// "status" é palavra reservada: o filtro precisa do alias de nome
	require.NotNil(t, client.scanInput)
	assert.Equal(t, "status", client.scanInput.ExpressionAttributeNames["#status"])
	assert.Equal(t, "#status = :active", aws.ToString(client.scanInput.FilterExpression))
}

func TestListForTenantQueriesByPartitionKey(t *testing.T) {
	cfg := entity.TenantIndicatorConfig{TenantID: "tenant-a", IndicatorID: "iam-mfa", Enabled: true}
	item, err := attributevalue.MarshalMap(cfg)
	require.NoError(t, err)

	client := &fakeDynamoDB{queryOuts: []*dynamodb.QueryOutput{
		{Items: []map[string]ddbTypes.AttributeValue{item}},
	}}
	repo := NewIndicatorConfigRepository(client, tableConfig(), zap.NewNop())

	configs, err := repo.ListForTenant(context.Background(), "tenant-a")
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "iam-mfa", configs[0].IndicatorID)
	assert.True(t, configs[0].Enabled)

	assert.Equal(t, "indicator-configs", aws.ToString(client.queryInput.TableName))
	assert.Equal(t, "tenant_id = :tenant", aws.ToString(client.queryInput.KeyConditionExpression))
}
