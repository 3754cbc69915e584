package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
)

// ConnectivityUseCase runs the onboarding self-test: assume the candidate
// delegation role with its external token and issue one minimal read-only
// call. No indicator runs and nothing is persisted.
type ConnectivityUseCase struct {
	resolver repository.SessionResolver
	console  types.ConsoleInterface
	logger   *zap.Logger
}

// NewConnectivityUseCase creates a new connectivity use case.
func NewConnectivityUseCase(resolver repository.SessionResolver, console types.ConsoleInterface, logger *zap.Logger) *ConnectivityUseCase {
	return &ConnectivityUseCase{
		resolver: resolver,
		console:  console,
		logger:   logger.Named("connectivity"),
	}
}

// Test valida o par (role, external token) informado no onboarding.
func (uc *ConnectivityUseCase) Test(ctx context.Context, roleARN, externalID string) error {
	if roleARN == "" {
		return fmt.Errorf("connectivity test requires a role ARN")
	}
	if externalID == "" {
		return fmt.Errorf("connectivity test requires an external token")
	}

	uc.console.LogInfo("Testing connectivity for role %s", roleARN)

	start := time.Now()
	if err := uc.resolver.TestConnection(ctx, roleARN, externalID); err != nil {
		uc.logger.Warn("connectivity test failed",
			zap.String("role_arn", roleARN),
			zap.Error(err))
		uc.console.LogError("Connectivity test failed: %v", err)
		return err
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	uc.logger.Info("connectivity test passed",
		zap.String("role_arn", roleARN),
		zap.Duration("elapsed", elapsed))
	uc.console.LogSuccess("Connectivity test passed in %s: role is assumable and read access works", elapsed)
	return nil
}
