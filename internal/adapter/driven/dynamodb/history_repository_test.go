package dynamodb

import (
	"context"
	"fmt"
	"testing"
	"time"

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

// fakeDynamoDB roteiriza as respostas do cliente e captura as entradas.
type fakeDynamoDB struct {
	putInputs  []*dynamodb.PutItemInput
	putErrs    []error
	getOutput  *dynamodb.GetItemOutput
	getErr     error
	queryOuts  []*dynamodb.QueryOutput
	queryIdx   int
	queryInput *dynamodb.QueryInput
	scanOuts   []*dynamodb.ScanOutput
	scanIdx    int
	scanInput  *dynamodb.ScanInput
}

func (f *fakeDynamoDB) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOutput, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, params)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInput = params
	if f.queryIdx >= len(f.queryOuts) {
		return &dynamodb.QueryOutput{}, nil
	}
	out := f.queryOuts[f.queryIdx]
	f.queryIdx++
	return out, nil
}

func (f *fakeDynamoDB) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInput = params
	if f.scanIdx >= len(f.scanOuts) {
		return &dynamodb.ScanOutput{}, nil
	}
	out := f.scanOuts[f.scanIdx]
	f.scanIdx++
	return out, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newHistoryRepo(client *fakeDynamoDB) *ExecutionHistoryRepositoryImpl {
	repo := NewExecutionHistoryRepository(client, types.TableConfig{ExecutionHistory: "history"}, zap.NewNop())
	impl := repo.(*ExecutionHistoryRepositoryImpl)
	impl.now = fixedClock
	return impl
}

func sampleRecord() entity.ExecutionRecord {
	return entity.ExecutionRecord{
		ExecutionID: "exec-0001",
		TenantID:    "tenant-a",
		AccountID:   "123456789012",
		Timestamp:   fixedClock().Format(time.RFC3339),
		Status:      entity.StatusPass,
		Summary:     entity.ExecutionSummary{Total: 1, Passed: 1},
	}
}

func TestSaveIsConditionalOnExecutionID(t *testing.T) {
	client := &fakeDynamoDB{}
	repo := newHistoryRepo(client)

	require.NoError(t, repo.Save(context.Background(), sampleRecord()))

	require.Len(t, client.putInputs, 1)
	input := client.putInputs[0]
	assert.Equal(t, "history", aws.ToString(input.TableName))
	assert.Equal(t, "attribute_not_exists(execution_id)", aws.ToString(input.ConditionExpression))
	assert.Equal(t, ddbTypes.ReturnValuesOnConditionCheckFailureAllOld, input.ReturnValuesOnConditionCheckFailure)
}

func TestSaveDefaultsTTLToRetentionWindow(t *testing.T) {
	client := &fakeDynamoDB{}
	repo := newHistoryRepo(client)

	require.NoError(t, repo.Save(context.Background(), sampleRecord()))

	var stored entity.ExecutionRecord
	require.NoError(t, attributevalue.UnmarshalMap(client.putInputs[0].Item, &stored))
	assert.Equal(t, fixedClock().Add(entity.RetentionWindow).Unix(), stored.TTL)
}

func TestSaveDuplicateExecutionIsIdempotent(t *testing.T) {
	client := &fakeDynamoDB{putErrs: []error{&ddbTypes.ConditionalCheckFailedException{}}}
	repo := newHistoryRepo(client)

	// o registro já existe: mesmo id, mesmo conteúdo, nada a refazer
	require.NoError(t, repo.Save(context.Background(), sampleRecord()))
	assert.Len(t, client.putInputs, 1)
}

func TestSaveDuplicateWithIdenticalStoredItemIsIdempotent(t *testing.T) {
	record := sampleRecord()
	record.TTL = fixedClock().Add(entity.RetentionWindow).Unix()
	stored, err := attributevalue.MarshalMap(record)
	require.NoError(t, err)

	client := &fakeDynamoDB{putErrs: []error{&ddbTypes.ConditionalCheckFailedException{Item: stored}}}
	repo := newHistoryRepo(client)

	require.NoError(t, repo.Save(context.Background(), record))
	assert.Len(t, client.putInputs, 1)
}

func TestSaveExecutionIDCollisionNeverOverwrites(t *testing.T) {
	other := sampleRecord()
	other.TenantID = "tenant-b"
	other.TTL = fixedClock().Add(entity.RetentionWindow).Unix()
	stored, err := attributevalue.MarshalMap(other)
	require.NoError(t, err)

	client := &fakeDynamoDB{putErrs: []error{&ddbTypes.ConditionalCheckFailedException{Item: stored}}}
	repo := newHistoryRepo(client)

	err = repo.Save(context.Background(), sampleRecord())
	require.ErrorIs(t, err, types.ErrPersistenceFailure)
	// um conteúdo divergente sob o mesmo id não é retentado nem sobrescrito
	assert.Len(t, client.putInputs, 1)
}

func TestSaveRetriesTransientFailures(t *testing.T) {
	client := &fakeDynamoDB{putErrs: []error{
		fmt.Errorf("throttled"),
		fmt.Errorf("throttled"),
	}}
	repo := newHistoryRepo(client)

	require.NoError(t, repo.Save(context.Background(), sampleRecord()))
	assert.Len(t, client.putInputs, 3)
}

func TestSaveExhaustedRetriesSurfaceAsPersistenceFailure(t *testing.T) {
	client := &fakeDynamoDB{putErrs: []error{
		fmt.Errorf("throttled"),
		fmt.Errorf("throttled"),
		fmt.Errorf("throttled"),
	}}
	repo := newHistoryRepo(client)

	err := repo.Save(context.Background(), sampleRecord())
	require.ErrorIs(t, err, types.ErrPersistenceFailure)
	assert.Len(t, client.putInputs, saveAttempts)
}

func TestSaveRejectsRecordWithoutExecutionID(t *testing.T) {
	repo := newHistoryRepo(&fakeDynamoDB{})

	record := sampleRecord()
	record.ExecutionID = ""
	require.ErrorIs(t, repo.Save(context.Background(), record), types.ErrPersistenceFailure)
}

func TestGetByExecutionHidesExpiredRecords(t *testing.T) {
	expired := sampleRecord()
	expired.TTL = fixedClock().Add(-time.Hour).Unix()
	item, err := attributevalue.MarshalMap(expired)
	require.NoError(t, err)

	repo := newHistoryRepo(&fakeDynamoDB{getOutput: &dynamodb.GetItemOutput{Item: item}})

	_, err = repo.GetByExecution(context.Background(), "exec-0001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListByTenantFiltersExpiredAndPaginates(t *testing.T) {
	fresh := sampleRecord()
	fresh.TTL = fixedClock().Add(time.Hour).Unix()
	freshItem, err := attributevalue.MarshalMap(fresh)
	require.NoError(t, err)

	stale := sampleRecord()
	stale.ExecutionID = "exec-0002"
	stale.TTL = fixedClock().Add(-time.Hour).Unix()
	staleItem, err := attributevalue.MarshalMap(stale)
	require.NoError(t, err)

	client := &fakeDynamoDB{queryOuts: []*dynamodb.QueryOutput{
		{
			Items: []map[string]ddbTypes.AttributeValue{freshItem},
			LastEvaluatedKey: map[string]ddbTypes.AttributeValue{
				"execution_id": &ddbTypes.AttributeValueMemberS{Value: "exec-0001"},
			},
		},
		{Items: []map[string]ddbTypes.AttributeValue{staleItem}},
	}}
	repo := newHistoryRepo(client)

	from := fixedClock().Add(-24 * time.Hour)
	to := fixedClock()
	records, err := repo.ListByTenant(context.Background(), "tenant-a", from, to)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "exec-0001", records[0].ExecutionID)
	assert.Equal(t, tenantTimestampIndex, aws.ToString(client.queryInput.IndexName))
}
