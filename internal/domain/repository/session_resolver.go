package repository

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// TenantSession is a scoped credential session for one tenant's target
// account. The configuration carries temporary credentials for cross-account
// tenants and must never be persisted or reused beyond the run that
// requested it.
type TenantSession struct {
	Config    aws.Config
	AccountID string
	Tenant    entity.Tenant
	ExpiresAt time.Time
}

// SessionResolver turns a tenant identifier into a credential session for the
// tenant's account. Failures map onto types.ErrTenantNotFound and
// types.ErrAccessDenied; a session is only returned when every invariant of
// the tenant's access mode holds. Resolutions are independent; no session is
// cached across executions.
type SessionResolver interface {
	Resolve(ctx context.Context, tenantID string) (*TenantSession, error)

	// TestConnection performs the onboarding connectivity self-test: assume
	// the given role with the external token and issue one minimal read-only
	// call, without running any validation.
	TestConnection(ctx context.Context, roleARN, externalID string) error
}

// ProbeExecutor runs a single read-only query against the tenant account.
// Failures are absorbed into the returned ProbeResult, never raised, so one
// failing probe cannot abort its siblings.
type ProbeExecutor interface {
	Execute(ctx context.Context, probe entity.Probe, session *TenantSession) entity.ProbeResult
}
