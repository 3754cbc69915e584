package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"go.uber.org/zap"
)

// probeTimeout is the fixed per-probe budget. A slow account costs one failed
// probe, never an aborted run; retrying is the caller's call, not ours.
const probeTimeout = 30 * time.Second

// detailLimit bounds how many resource identifiers a probe keeps as evidence.
const detailLimit = 5

// ProbeExecutorImpl issues exactly one read-only query per probe against the
// tenant session it is handed. It never mutates, never retries, and folds
// every failure into the returned ProbeResult.
type ProbeExecutorImpl struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*repository.TenantSession]*clientSet
}

// NewProbeExecutor cria uma nova implementação do ProbeExecutor.
func NewProbeExecutor(logger *zap.Logger) *ProbeExecutorImpl {
	return &ProbeExecutorImpl{
		logger:  logger.Named("probe_executor"),
		clients: make(map[*repository.TenantSession]*clientSet),
	}
}

// Execute runs one probe. Unknown descriptors, timeouts, refusals and
// malformed responses all come back as failure results with a classified
// reason; the caller decides what the missing evidence means.
func (e *ProbeExecutorImpl) Execute(ctx context.Context, probe entity.Probe, session *repository.TenantSession) entity.ProbeResult {
	op, ok := probeCalls[probe.Command()]
	if !ok {
		return entity.FailedProbe(probe, entity.FailureParseError,
			fmt.Sprintf("no read-only call mapped for %q", probe.Command()))
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	data, err := op(ctx, e.clientsFor(session), session)
	if err != nil {
		reason := classifyProbeError(err)
		e.logger.Warn("probe failed",
			zap.String("probe", probe.Command()),
			zap.String("tenant_id", session.Tenant.TenantID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return entity.FailedProbe(probe, reason, err.Error())
	}

	return entity.SucceededProbe(probe, data)
}

// clientsFor devolve o conjunto de clientes da sessão, criando-o uma única
// vez. O cache vive apenas enquanto a sessão vive: o processo é uma unidade
// de trabalho curta e sessões nunca são reutilizadas entre execuções.
func (e *ProbeExecutorImpl) clientsFor(session *repository.TenantSession) *clientSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cs, ok := e.clients[session]; ok {
		return cs
	}
	cs := newClientSet(session.Config)
	e.clients[session] = cs
	return cs
}

// clientSet bundles the per-service clients built from one tenant session,
// mirroring the set of services the probe table can reach.
type clientSet struct {
	ec2       *ec2.Client
	iam       *iam.Client
	kms       *kms.Client
	secrets   *secretsmanager.Client
	trail     *cloudtrail.Client
	watch     *cloudwatch.Client
	logs      *cloudwatchlogs.Client
	sns       *sns.Client
	route53   *route53.Client
	configsvc *configservice.Client
	cfn       *cloudformation.Client
	s3        *s3.Client
	rds       *rds.Client
	lambda    *lambda.Client
	elbv2     *elasticloadbalancingv2.Client
	budgets   *budgets.Client
}

func newClientSet(cfg aws.Config) *clientSet {
	return &clientSet{
		ec2:       ec2.NewFromConfig(cfg),
		iam:       iam.NewFromConfig(cfg),
		kms:       kms.NewFromConfig(cfg),
		secrets:   secretsmanager.NewFromConfig(cfg),
		trail:     cloudtrail.NewFromConfig(cfg),
		watch:     cloudwatch.NewFromConfig(cfg),
		logs:      cloudwatchlogs.NewFromConfig(cfg),
		sns:       sns.NewFromConfig(cfg),
		route53:   route53.NewFromConfig(cfg),
		configsvc: configservice.NewFromConfig(cfg),
		cfn:       cloudformation.NewFromConfig(cfg),
		s3:        s3.NewFromConfig(cfg),
		rds:       rds.NewFromConfig(cfg),
		lambda:    lambda.NewFromConfig(cfg),
		elbv2:     elasticloadbalancingv2.NewFromConfig(cfg),
		budgets:   budgets.NewFromConfig(cfg),
	}
}

// classifyProbeError maps a provider error onto the probe failure taxonomy.
func classifyProbeError(err error) entity.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.FailureTimeout
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation", "UnrecognizedClientException":
			return entity.FailureAccessDenied
		}
		return entity.FailureAPIError
	}

	var deserializeErr *smithy.DeserializationError
	if errors.As(err, &deserializeErr) {
		return entity.FailureParseError
	}

	return entity.FailureAPIError
}
