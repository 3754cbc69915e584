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

// DynamoDBAPI é o subconjunto do cliente DynamoDB usado pelos repositórios,
// pequeno o bastante para dublês de teste.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TenantRepositoryImpl lê o metadata de tenants mantido pelo fluxo de
// onboarding. Somente leitura deste lado.
type TenantRepositoryImpl struct {
	client DynamoDBAPI
	table  string
	logger *zap.Logger
}

// NewTenantRepository cria uma nova implementação do TenantRepository.
func NewTenantRepository(client DynamoDBAPI, tables types.TableConfig, logger *zap.Logger) repository.TenantRepository {
	return &TenantRepositoryImpl{
		client: client,
		table:  tables.TenantMetadata,
		logger: logger.Named("tenant-repository"),
	}
}

// GetTenant busca o registro do tenant pela chave primária.
func (r *TenantRepositoryImpl) GetTenant(ctx context.Context, tenantID string) (entity.Tenant, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbTypes.AttributeValue{
			"tenant_id": &ddbTypes.AttributeValueMemberS{Value: tenantID},
		},
	})
	if err != nil {
		return entity.Tenant{}, fmt.Errorf("reading tenant %s: %w", tenantID, err)
	}
	if out.Item == nil {
		return entity.Tenant{}, fmt.Errorf("tenant %s: %w", tenantID, types.ErrTenantNotFound)
	}

	var tenant entity.Tenant
	if err := attributevalue.UnmarshalMap(out.Item, &tenant); err != nil {
		return entity.Tenant{}, fmt.Errorf("decoding tenant %s: %w", tenantID, err)
	}
	return tenant, nil
}

// ListActiveTenants varre a tabela filtrando pelo status de onboarding.
// "status" é palavra reservada no DynamoDB, daí o alias de nome.
func (r *TenantRepositoryImpl) ListActiveTenants(ctx context.Context) ([]entity.Tenant, error) {
	var tenants []entity.Tenant
	var startKey map[string]ddbTypes.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.table),
			FilterExpression: aws.String("#status = :active"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
				":active": &ddbTypes.AttributeValueMemberS{Value: string(entity.TenantStatusActive)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning tenants: %w", err)
		}

		var page []entity.Tenant
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("decoding tenant page: %w", err)
		}
		tenants = append(tenants, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	r.logger.Debug("active tenants listed", zap.Int("count", len(tenants)))
	return tenants, nil
}
