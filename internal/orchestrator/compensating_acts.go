package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/pyqs-uploader/internal/repository"
	"go.uber.org/zap"
)

// CompensatingActions provides idempotent cleanup for upload workflow steps
type CompensatingActions struct {
	githubRepo repository.GithubRepository
	logger     *zap.Logger
}

// NewCompensatingActions creates a new compensating actions handler
func NewCompensatingActions(githubRepo repository.GithubRepository, logger *zap.Logger) *CompensatingActions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompensatingActions{
		githubRepo: githubRepo,
		logger:     logger,
	}
}

// DeleteBranch deletes an upload branch that this upload created
func (ca *CompensatingActions) DeleteBranch(ctx context.Context, data map[string]any) error {
	branchName, ok := data[dataKeyBranchName].(string)
	if !ok || branchName == "" {
		return fmt.Errorf("branch_name not found in step data")
	}
	if !ca.wasCreatedInSession(data) {
		ca.logger.Info("branch existed before this upload, skipping deletion", zap.String("branch", branchName))
		return nil
	}
	if ca.githubRepo == nil {
		return fmt.Errorf("no repository to delete branch %s from", branchName)
	}
	if err := ca.githubRepo.DeleteBranch(ctx, branchName); err != nil {
		return err
	}
	ca.logger.Info("deleted orphaned upload branch", zap.String("branch", branchName))
	return nil
}

func (ca *CompensatingActions) wasCreatedInSession(data map[string]any) bool {
	created, ok := data[dataKeyCreatedInSession].(bool)
	return ok && created
}
