package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

const (
	// tenantTimestampIndex é a GSI (tenant_id, timestamp) usada nas leituras
	// por tenant.
	tenantTimestampIndex = "tenant-timestamp-index"

	saveAttempts = 3
)

// ExecutionHistoryRepositoryImpl persiste registros de execução write-once
// com TTL. Um execution_id nunca é sobrescrito: o put é condicional e a
// colisão com o mesmo id é tratada como sucesso idempotente.
type ExecutionHistoryRepositoryImpl struct {
	client DynamoDBAPI
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// NewExecutionHistoryRepository cria uma nova implementação do
// ExecutionHistoryRepository.
func NewExecutionHistoryRepository(client DynamoDBAPI, tables types.TableConfig, logger *zap.Logger) repository.ExecutionHistoryRepository {
	return &ExecutionHistoryRepositoryImpl{
		client: client,
		table:  tables.ExecutionHistory,
		logger: logger.Named("execution-history-repository"),
		now:    time.Now,
	}
}

// Save grava o registro com put condicional em execution_id. O TTL é
// derivado da janela de retenção quando o chamador não o preencheu.
func (r *ExecutionHistoryRepositoryImpl) Save(ctx context.Context, record entity.ExecutionRecord) error {
	if record.ExecutionID == "" {
		return fmt.Errorf("execution record without execution_id: %w", types.ErrPersistenceFailure)
	}
	if record.TTL == 0 {
		record.TTL = r.now().Add(entity.RetentionWindow).Unix()
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("encoding execution record %s: %w", record.ExecutionID, err)
	}

	var lastErr error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                           aws.String(r.table),
			Item:                                item,
			ConditionExpression:                 aws.String("attribute_not_exists(execution_id)"),
			ReturnValuesOnConditionCheckFailure: ddbTypes.ReturnValuesOnConditionCheckFailureAllOld,
		})
		if err == nil {
			r.logger.Info("execution record persisted",
				zap.String("execution_id", record.ExecutionID),
				zap.String("tenant_id", record.TenantID),
				zap.String("status", string(record.Status)))
			return nil
		}

		var conditionFailed *ddbTypes.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// retry do mesmo id grava o mesmo conteúdo; um item divergente
			// é colisão de execution_id e nunca sobrescreve o registro
			if conditionFailed.Item != nil && !reflect.DeepEqual(conditionFailed.Item, item) {
				return fmt.Errorf("execution record %s already exists with different content: %w",
					record.ExecutionID, types.ErrPersistenceFailure)
			}
			r.logger.Debug("execution record already persisted",
				zap.String("execution_id", record.ExecutionID))
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("persisting execution record %s: %w", record.ExecutionID, ctx.Err())
		}

		lastErr = err
		r.logger.Warn("execution record write failed",
			zap.String("execution_id", record.ExecutionID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return fmt.Errorf("persisting execution record %s after %d attempts: %w: %v",
		record.ExecutionID, saveAttempts, types.ErrPersistenceFailure, lastErr)
}

// GetByExecution busca um registro pelo execution_id. Registros expirados
// são tratados como inexistentes.
func (r *ExecutionHistoryRepositoryImpl) GetByExecution(ctx context.Context, executionID string) (entity.ExecutionRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbTypes.AttributeValue{
			"execution_id": &ddbTypes.AttributeValueMemberS{Value: executionID},
		},
	})
	if err != nil {
		return entity.ExecutionRecord{}, fmt.Errorf("reading execution %s: %w", executionID, err)
	}
	if out.Item == nil {
		return entity.ExecutionRecord{}, fmt.Errorf("execution %s not found", executionID)
	}

	var record entity.ExecutionRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return entity.ExecutionRecord{}, fmt.Errorf("decoding execution %s: %w", executionID, err)
	}
	if record.Expired(r.now()) {
		return entity.ExecutionRecord{}, fmt.Errorf("execution %s not found", executionID)
	}
	return record, nil
}

// ListByTenant consulta a GSI tenant/timestamp no intervalo pedido,
// excluindo registros além da janela de retenção.
func (r *ExecutionHistoryRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]entity.ExecutionRecord, error) {
	var records []entity.ExecutionRecord
	var startKey map[string]ddbTypes.AttributeValue
	now := r.now()

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(tenantTimestampIndex),
			KeyConditionExpression: aws.String("tenant_id = :tenant AND #ts BETWEEN :from AND :to"),
			ExpressionAttributeNames: map[string]string{
				"#ts": "timestamp",
			},
			ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
				":tenant": &ddbTypes.AttributeValueMemberS{Value: tenantID},
				":from":   &ddbTypes.AttributeValueMemberS{Value: from.UTC().Format(time.RFC3339)},
				":to":     &ddbTypes.AttributeValueMemberS{Value: to.UTC().Format(time.RFC3339)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("querying executions for tenant %s: %w", tenantID, err)
		}

		var page []entity.ExecutionRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("decoding execution page: %w", err)
		}
		for _, record := range page {
			if record.Expired(now) {
				continue
			}
			records = append(records, record)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return records, nil
}
