package usecase

import (
	"context"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockGithubRepository struct {
	mock.Mock
}

func (m *mockGithubRepository) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	args := m.Called(ctx, branch)
	return args.String(0), args.Error(1)
}

func (m *mockGithubRepository) CreateBranch(ctx context.Context, branch, sha string) error {
	args := m.Called(ctx, branch, sha)
	return args.Error(0)
}

func (m *mockGithubRepository) CreateFile(ctx context.Context, path, branch, message string, content []byte) error {
	args := m.Called(ctx, path, branch, message, content)
	return args.Error(0)
}

func (m *mockGithubRepository) CreatePullRequest(
	ctx context.Context,
	title, body, head, base string,
) (*domain.PullRequest, error) {
	args := m.Called(ctx, title, body, head, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *mockGithubRepository) DeleteBranch(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}
