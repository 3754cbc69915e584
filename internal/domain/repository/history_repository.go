package repository

import (
	"context"
	"time"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// ExecutionHistoryRepository is the durable, write-once store of validation
// runs. Save with an already-used execution identifier is idempotent when the
// content matches; expired records are excluded from reads.
type ExecutionHistoryRepository interface {
	Save(ctx context.Context, record entity.ExecutionRecord) error
	GetByExecution(ctx context.Context, executionID string) (entity.ExecutionRecord, error)
	ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]entity.ExecutionRecord, error)
}
