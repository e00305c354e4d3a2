package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/pyqs-uploader/internal/config"
	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/compozy/pyqs-uploader/internal/repository"
)

// CreateUploadBranchUseCase creates the branch an upload is committed to.
type CreateUploadBranchUseCase struct {
	GithubRepo repository.GithubRepository
}

// Execute runs the use case.
func (uc *CreateUploadBranchUseCase) Execute(ctx context.Context, branchName, sha string) error {
	if err := config.ValidateBranchName(branchName); err != nil {
		return fmt.Errorf("%w %q: %w", domain.ErrBranchCreation, branchName, err)
	}
	if sha == "" {
		return fmt.Errorf("%w %q: base sha cannot be empty", domain.ErrBranchCreation, branchName)
	}
	return uc.GithubRepo.CreateBranch(ctx, branchName, sha)
}
