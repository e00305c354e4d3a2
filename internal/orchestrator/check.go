package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/compozy/pyqs-uploader/internal/repository"
	"github.com/compozy/pyqs-uploader/internal/service"
	"go.uber.org/zap"
)

// CheckResult reports what a deployment can reach.
type CheckResult struct {
	TokenExpiresAt time.Time
	BaseBranch     string
	BaseSHA        string
}

// CheckOrchestrator verifies app credentials and the base branch without
// mutating the repository.
type CheckOrchestrator struct {
	credentials service.CredentialService
	newRepo     repository.GithubRepositoryFactory
	baseBranch  string
	logger      *zap.Logger
}

// NewCheckOrchestrator creates a new CheckOrchestrator
func NewCheckOrchestrator(
	credentials service.CredentialService,
	newRepo repository.GithubRepositoryFactory,
	baseBranch string,
	logger *zap.Logger,
) *CheckOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckOrchestrator{
		credentials: credentials,
		newRepo:     newRepo,
		baseBranch:  baseBranch,
		logger:      logger,
	}
}

// Execute mints an installation token and resolves the base branch tip.
func (o *CheckOrchestrator) Execute(ctx context.Context) (*CheckResult, error) {
	token, err := o.credentials.InstallationToken(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("installation token minted", zap.Time("expires_at", token.ExpiresAt))
	repo, err := o.newRepo(token.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteAuth, err)
	}
	sha, err := repo.GetBranchSHA(ctx, o.baseBranch)
	if err != nil {
		return nil, err
	}
	o.logger.Info("base branch resolved", zap.String("branch", o.baseBranch), zap.String("sha", sha))
	return &CheckResult{
		TokenExpiresAt: token.ExpiresAt,
		BaseBranch:     o.baseBranch,
		BaseSHA:        sha,
	}, nil
}
