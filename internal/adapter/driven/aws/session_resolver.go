package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
	"go.uber.org/zap"
)

const (
	// sessionDurationSeconds bounds the lifetime of an assumed session to one
	// hour, the least privilege the validation run needs.
	sessionDurationSeconds = int32(3600)

	// resolveTimeout bounds the identity-service round trip. A resolution
	// timeout is a tenant-level failure, unlike a probe timeout.
	resolveTimeout = 30 * time.Second

	sessionNamePrefix = "posture-validation"
)

// STSAPI is the slice of the STS surface the resolver needs; narrowed to an
// interface so tests can stand in for the identity service.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// SessionResolverImpl implementa o SessionResolver sobre o STS.
type SessionResolverImpl struct {
	tenants repository.TenantRepository
	region  string
	logger  *zap.Logger

	loadConfig func(ctx context.Context, region string) (aws.Config, error)
	newSTS     func(cfg aws.Config) STSAPI
}

// NewSessionResolver cria uma nova implementação do SessionResolver.
func NewSessionResolver(tenants repository.TenantRepository, region string, logger *zap.Logger) *SessionResolverImpl {
	return &SessionResolverImpl{
		tenants: tenants,
		region:  region,
		logger:  logger.Named("session_resolver"),
		loadConfig: func(ctx context.Context, region string) (aws.Config, error) {
			return config.LoadDefaultConfig(ctx, config.WithRegion(region))
		},
		newSTS: func(cfg aws.Config) STSAPI {
			return sts.NewFromConfig(cfg)
		},
	}
}

// Resolve loads the tenant record and produces a scoped credential session
// for its target account. Cross-account tenants missing a role reference or
// external token are refused with ErrAccessDenied before any probe runs.
// Nothing is cached across resolutions, and neither the external token nor
// the temporary session secrets are ever logged.
func (r *SessionResolverImpl) Resolve(ctx context.Context, tenantID string) (*repository.TenantSession, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	tenant, err := r.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := tenant.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrAccessDenied, err)
	}

	base, err := r.loadConfig(ctx, r.region)
	if err != nil {
		return nil, fmt.Errorf("%w: loading provider credentials: %v", types.ErrAccessDenied, err)
	}

	if tenant.AccessMode == entity.AccessModeNative {
		r.logger.Info("using native session for internal tenant",
			zap.String("tenant_id", tenant.TenantID),
			zap.String("account_id", tenant.AccountID),
		)
		return &repository.TenantSession{
			Config:    base,
			AccountID: tenant.AccountID,
			Tenant:    tenant,
		}, nil
	}

	return r.assumeTenantRole(ctx, base, tenant)
}

func (r *SessionResolverImpl) assumeTenantRole(ctx context.Context, base aws.Config, tenant entity.Tenant) (*repository.TenantSession, error) {
	r.logger.Info("assuming cross-account role",
		zap.String("tenant_id", tenant.TenantID),
		zap.String("role_arn", tenant.RoleARN),
	)

	out, err := r.newSTS(base).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(tenant.RoleARN),
		RoleSessionName: aws.String(sessionName(tenant.TenantID, time.Now())),
		ExternalId:      aws.String(tenant.ExternalID),
		DurationSeconds: aws.Int32(sessionDurationSeconds),
	})
	if err != nil {
		// preserva o erro do provedor para auditoria, sem o token externo
		return nil, fmt.Errorf("%w: assuming role for tenant %s: %v", types.ErrAccessDenied, tenant.TenantID, err)
	}

	creds := out.Credentials
	scoped := base.Copy()
	scoped.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	))

	accountID := accountIDFromRoleARN(tenant.RoleARN)

	session := &repository.TenantSession{
		Config:    scoped,
		AccountID: accountID,
		Tenant:    tenant,
	}
	if creds.Expiration != nil {
		session.ExpiresAt = *creds.Expiration
	}

	r.logger.Info("assumed cross-account role",
		zap.String("tenant_id", tenant.TenantID),
		zap.String("account_id", accountID),
	)
	return session, nil
}

// TestConnection is the onboarding connectivity self-test: assume the role
// with the supplied external token and issue a single minimal read-only call.
// No validation runs and nothing is persisted.
func (r *SessionResolverImpl) TestConnection(ctx context.Context, roleARN, externalID string) error {
	if roleARN == "" || externalID == "" {
		return fmt.Errorf("%w: role reference and external token are both required", types.ErrAccessDenied)
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	base, err := r.loadConfig(ctx, r.region)
	if err != nil {
		return fmt.Errorf("%w: loading provider credentials: %v", types.ErrAccessDenied, err)
	}

	out, err := r.newSTS(base).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(fmt.Sprintf("%s-test-%d", sessionNamePrefix, time.Now().Unix())),
		ExternalId:      aws.String(externalID),
		DurationSeconds: aws.Int32(sessionDurationSeconds),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrAccessDenied, err)
	}

	scoped := base.Copy()
	scoped.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
	))

	// uma chamada mínima somente-leitura confirma que a role é utilizável
	if _, err := ec2.NewFromConfig(scoped).DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	}); err != nil {
		return fmt.Errorf("%w: read-only self-test call failed: %v", types.ErrAccessDenied, err)
	}

	return nil
}

// sessionName embeds the tenant identifier and a monotonic timestamp so the
// grant shows up unambiguously in the target account's audit trail.
func sessionName(tenantID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", sessionNamePrefix, tenantID, now.Unix())
}

// accountIDFromRoleARN extrai o account id do ARN da role
// (arn:aws:iam::123456789012:role/...).
func accountIDFromRoleARN(roleARN string) string {
	parts := strings.Split(roleARN, ":")
	if len(parts) > 4 {
		return parts[4]
	}
	return "unknown"
}
