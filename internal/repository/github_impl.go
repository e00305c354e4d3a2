package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/compozy/pyqs-uploader/internal/config"
	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/google/go-github/v74/github"
)

// githubRepository is the implementation of the GithubRepository interface.
type githubRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGithubRepository creates a new GithubRepository with validation.
func NewGithubRepository(client *github.Client, owner, repo string) (GithubRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("github client cannot be nil")
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	return &githubRepository{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// NewGithubRepositoryFactory returns a factory that builds token-bound
// repositories sharing httpClient and baseURL.
func NewGithubRepositoryFactory(httpClient *http.Client, baseURL, owner, repo string) GithubRepositoryFactory {
	return func(token string) (GithubRepository, error) {
		client, err := NewGithubClient(httpClient, baseURL, token)
		if err != nil {
			return nil, fmt.Errorf("failed to create github client: %w", err)
		}
		return NewGithubRepository(client, owner, repo)
	}
}

// GetBranchSHA returns the commit the branch points at.
func (r *githubRepository) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	ref, _, err := r.client.Git.GetRef(ctx, r.owner, r.repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", domain.ErrRefResolution, branch, err)
	}
	sha := ref.GetObject().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("%w %q: response has no commit sha", domain.ErrRefResolution, branch)
	}
	return sha, nil
}

// CreateBranch creates a new branch at sha.
func (r *githubRepository) CreateBranch(ctx context.Context, branch, sha string) error {
	ref, _, err := r.client.Git.CreateRef(ctx, r.owner, r.repo, &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.Ptr(sha)},
	})
	if err != nil {
		return fmt.Errorf("%w %q: %w", domain.ErrBranchCreation, branch, err)
	}
	if ref.GetRef() == "" {
		return fmt.Errorf("%w %q: response has no ref", domain.ErrBranchCreation, branch)
	}
	return nil
}

// CreateFile commits content to path on branch. The contents API expects
// base64, which go-github produces from the []byte field.
func (r *githubRepository) CreateFile(ctx context.Context, path, branch, message string, content []byte) error {
	res, _, err := r.client.Repositories.CreateFile(ctx, r.owner, r.repo, escapePath(path), &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
		Branch:  github.Ptr(branch),
	})
	if err != nil {
		return fmt.Errorf("%w %q: %w", domain.ErrCommit, path, err)
	}
	if res.Commit.GetSHA() == "" {
		return fmt.Errorf("%w %q: response has no commit sha", domain.ErrCommit, path)
	}
	return nil
}

// CreatePullRequest creates a new pull request.
func (r *githubRepository) CreatePullRequest(
	ctx context.Context,
	title, body, head, base string,
) (*domain.PullRequest, error) {
	pr, _, err := r.client.PullRequests.Create(ctx, r.owner, r.repo, &github.NewPullRequest{
		Title: &title,
		Body:  &body,
		Head:  &head,
		Base:  &base,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPullRequest, err)
	}
	if pr.GetHTMLURL() == "" {
		return nil, fmt.Errorf("%w: response has no html_url", domain.ErrPullRequest)
	}
	return &domain.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}

// DeleteBranch deletes a branch. A branch that is already gone is not an error.
func (r *githubRepository) DeleteBranch(ctx context.Context, branch string) error {
	resp, err := r.client.Git.DeleteRef(ctx, r.owner, r.repo, "heads/"+branch)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity) {
			return nil
		}
		return fmt.Errorf("failed to delete branch %q: %w", branch, err)
	}
	return nil
}

// escapePath escapes each segment of a repository path. go-github puts the
// contents path into the URL verbatim, so '#', '?' and '%' would otherwise
// truncate or corrupt it.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
