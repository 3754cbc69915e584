package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

// IndicatorConfigRepositoryImpl lê as configurações de indicador por tenant.
type IndicatorConfigRepositoryImpl struct {
	client DynamoDBAPI
	table  string
	logger *zap.Logger
}

// NewIndicatorConfigRepository cria uma nova implementação do
// IndicatorConfigRepository.
func NewIndicatorConfigRepository(client DynamoDBAPI, tables types.TableConfig, logger *zap.Logger) repository.IndicatorConfigRepository {
	return &IndicatorConfigRepositoryImpl{
		client: client,
		table:  tables.IndicatorConfigs,
		logger: logger.Named("indicator-config-repository"),
	}
}

// ListForTenant consulta todos os overrides do tenant. Resultado vazio
// significa que o tenant roda com o conjunto padrão de indicadores.
func (r *IndicatorConfigRepositoryImpl) ListForTenant(ctx context.Context, tenantID string) ([]entity.TenantIndicatorConfig, error) {
	var configs []entity.TenantIndicatorConfig
	var startKey map[string]ddbTypes.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			KeyConditionExpression: aws.String("tenant_id = :tenant"),
			ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
				":tenant": &ddbTypes.AttributeValueMemberS{Value: tenantID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("querying indicator configs for tenant %s: %w", tenantID, err)
		}

		var page []entity.TenantIndicatorConfig
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("decoding indicator config page: %w", err)
		}
		configs = append(configs, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	r.logger.Debug("indicator configs loaded",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(configs)))
	return configs, nil
}
