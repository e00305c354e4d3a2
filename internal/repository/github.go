package repository

import (
	"context"

	"github.com/compozy/pyqs-uploader/internal/domain"
)

// GithubRepository defines the repository mutations an upload performs.
// An implementation is bound to one installation token and one repository.
type GithubRepository interface {
	// GetBranchSHA returns the tip commit of branch
	GetBranchSHA(ctx context.Context, branch string) (string, error)
	// CreateBranch creates refs/heads/<branch> pointing at sha
	CreateBranch(ctx context.Context, branch, sha string) error
	// CreateFile commits content at path on branch, replacing any existing file
	CreateFile(ctx context.Context, path, branch, message string, content []byte) error
	// CreatePullRequest opens a pull request from head into base
	CreatePullRequest(ctx context.Context, title, body, head, base string) (*domain.PullRequest, error)
	// DeleteBranch removes refs/heads/<branch>
	DeleteBranch(ctx context.Context, branch string) error
}

// GithubRepositoryFactory binds a GithubRepository to an installation token.
type GithubRepositoryFactory func(token string) (GithubRepository, error)
