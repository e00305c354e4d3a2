package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/compozy/pyqs-uploader/internal/repository"
	"github.com/compozy/pyqs-uploader/internal/service"
	"github.com/compozy/pyqs-uploader/internal/usecase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadConfig contains configuration for the upload workflow.
type UploadConfig struct {
	BaseBranch            string
	Templates             usecase.NameTemplates
	RetryCount            uint64
	RetryDelay            time.Duration
	CleanupOrphanedBranch bool
}

// UploadOrchestrator turns an upload request into a pull request.
type UploadOrchestrator struct {
	cfg         UploadConfig
	credentials service.CredentialService
	newRepo     repository.GithubRepositoryFactory
	prBody      *usecase.PreparePRBodyUseCase
	logger      *zap.Logger
	now         func() time.Time
}

// Option customizes an UploadOrchestrator.
type Option func(*UploadOrchestrator)

// WithClock replaces time.Now, which names upload branches.
func WithClock(now func() time.Time) Option {
	return func(o *UploadOrchestrator) { o.now = now }
}

// NewUploadOrchestrator creates a new upload orchestrator.
func NewUploadOrchestrator(
	cfg UploadConfig,
	credentials service.CredentialService,
	newRepo repository.GithubRepositoryFactory,
	logger *zap.Logger,
	opts ...Option,
) (*UploadOrchestrator, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential service cannot be nil")
	}
	if newRepo == nil {
		return nil, fmt.Errorf("repository factory cannot be nil")
	}
	if cfg.BaseBranch == "" {
		return nil, fmt.Errorf("base branch cannot be empty")
	}
	if err := cfg.Templates.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &UploadOrchestrator{
		cfg:         cfg,
		credentials: credentials,
		newRepo:     newRepo,
		prBody:      &usecase.PreparePRBodyUseCase{},
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Execute validates req and runs the upload workflow: mint token, resolve
// the base branch, create the upload branch, commit the file and open the
// pull request. Validation errors are returned before any remote call.
func (o *UploadOrchestrator) Execute(ctx context.Context, req *domain.UploadRequest) (*domain.UploadResult, error) {
	if req == nil {
		return nil, domain.ErrInvalidPDF
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := o.prBody.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare PR body: %w", err)
	}

	uploadID := uuid.NewString()
	branch := o.cfg.Templates.BranchName(o.now())
	filePath := req.FilePath()
	fileName := req.CommitName()
	logger := o.logger.With(
		zap.String("upload_id", uploadID),
		zap.String("branch", branch),
		zap.String("path", filePath),
	)

	exec := NewStepExecutor(uploadID, StepExecutorConfig{
		RetryCount:         o.cfg.RetryCount,
		RetryDelay:         o.cfg.RetryDelay,
		EnableCompensation: o.cfg.CleanupOrphanedBranch,
	}, logger)
	exec.SetBranch(branch)

	var (
		repo repository.GithubRepository
		sha  string
		pr   *domain.PullRequest
	)
	exec.AddStep(Step{
		Name:      "mint installation token",
		Type:      domain.StepTypeMintToken,
		Retryable: true,
		Execute: func(ctx context.Context) (map[string]any, error) {
			token, err := o.credentials.InstallationToken(ctx)
			if err != nil {
				return nil, err
			}
			repo, err = o.newRepo(token.Token)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrRemoteAuth, err)
			}
			return map[string]any{dataKeyTokenExpiry: token.ExpiresAt}, nil
		},
	})
	exec.AddStep(Step{
		Name:      "resolve base branch",
		Type:      domain.StepTypeResolveBase,
		Retryable: true,
		Execute: func(ctx context.Context) (map[string]any, error) {
			var err error
			sha, err = repo.GetBranchSHA(ctx, o.cfg.BaseBranch)
			if err != nil {
				return nil, err
			}
			return map[string]any{dataKeySHA: sha}, nil
		},
	})
	exec.AddStep(Step{
		Name: "create upload branch",
		Type: domain.StepTypeCreateBranch,
		Execute: func(ctx context.Context) (map[string]any, error) {
			uc := &usecase.CreateUploadBranchUseCase{GithubRepo: repo}
			if err := uc.Execute(ctx, branch, sha); err != nil {
				return nil, err
			}
			return map[string]any{dataKeyBranchName: branch, dataKeyCreatedInSession: true}, nil
		},
		Compensate: func(ctx context.Context, data map[string]any) error {
			return NewCompensatingActions(repo, logger).DeleteBranch(ctx, data)
		},
	})
	exec.AddStep(Step{
		Name: "commit file",
		Type: domain.StepTypeCommitFile,
		Execute: func(ctx context.Context) (map[string]any, error) {
			message := o.cfg.Templates.CommitMessage(fileName)
			if err := repo.CreateFile(ctx, filePath, branch, message, req.Content); err != nil {
				return nil, err
			}
			return map[string]any{dataKeyPath: filePath}, nil
		},
	})
	exec.AddStep(Step{
		Name: "open pull request",
		Type: domain.StepTypeOpenPullRequest,
		Execute: func(ctx context.Context) (map[string]any, error) {
			var err error
			title := o.cfg.Templates.PullRequestTitle(fileName)
			pr, err = repo.CreatePullRequest(ctx, title, body, branch, o.cfg.BaseBranch)
			if err != nil {
				return nil, err
			}
			return map[string]any{dataKeyPRNumber: pr.Number, dataKeyPRURL: pr.HTMLURL}, nil
		},
	})

	logger.Info("upload started", zap.Int("bytes", len(req.Content)))
	if err := exec.Execute(ctx); err != nil {
		logger.Error("upload failed",
			zap.String("kind", string(domain.ErrorKind(err))),
			zap.Any("executed_steps", exec.State().ExecutedSteps()),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("upload completed", zap.String("pull_request", pr.HTMLURL))
	return &domain.UploadResult{
		UploadID:          uploadID,
		Branch:            branch,
		FilePath:          filePath,
		PullRequestNumber: pr.Number,
		PullRequestURL:    pr.HTMLURL,
	}, nil
}
