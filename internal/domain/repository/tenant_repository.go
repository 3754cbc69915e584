package repository

import (
	"context"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// TenantRepository reads tenant metadata owned by the onboarding flow. The
// validation engine never writes through this interface.
type TenantRepository interface {
	GetTenant(ctx context.Context, tenantID string) (entity.Tenant, error)
	ListActiveTenants(ctx context.Context) ([]entity.Tenant, error)
}
