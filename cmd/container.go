package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/compozy/pyqs-uploader/internal/config"
	"github.com/compozy/pyqs-uploader/internal/logger"
	"github.com/compozy/pyqs-uploader/internal/orchestrator"
	"github.com/compozy/pyqs-uploader/internal/repository"
	"github.com/compozy/pyqs-uploader/internal/service"
	"github.com/compozy/pyqs-uploader/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg    *config.Config
	logger *zap.Logger

	fsRepo      repository.FileSystemRepository
	httpClient  *http.Client
	credentials service.CredentialService
	repoFactory repository.GithubRepositoryFactory
}

// newContainer loads configuration and builds the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return buildContainer(cfg, afero.NewOsFs())
}

func buildContainer(cfg *config.Config, fs afero.Fs) (*container, error) {
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: logger.Format(cfg.LogFormat)})
	fsRepo := repository.FileSystemRepository(fs)
	httpClient := newHTTPClient(cfg.HTTPTimeout)

	// Without app credentials the form still renders and every upload fails.
	var credentials service.CredentialService
	if cfg.HasAppCredentials() {
		keyPEM, err := cfg.LoadPrivateKey(fsRepo)
		if err != nil {
			return nil, err
		}
		credentials, err = service.NewCredentialService(service.CredentialConfig{
			AppID:               cfg.AppID,
			PrivateKeyPEM:       keyPEM,
			HTTPClient:          httpClient,
			BaseURL:             cfg.APIBaseURL,
			InstallationID:      cfg.InstallationID,
			InstallationAccount: cfg.InstallationAccount,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize credentials: %w", err)
		}
	} else {
		log.Warn("app_id and private key are not configured; uploads will fail")
		credentials = service.NewCredentialNoopService(cfg.RepoOwner, cfg.RepoName)
	}

	return &container{
		cfg:         cfg,
		logger:      log,
		fsRepo:      fsRepo,
		httpClient:  httpClient,
		credentials: credentials,
		repoFactory: repository.NewGithubRepositoryFactory(httpClient, cfg.APIBaseURL, cfg.RepoOwner, cfg.RepoName),
	}, nil
}

// newHTTPClient bounds the wait for each response's headers. The request
// body is excluded so a large content upload is limited only by the upload
// context deadline.
func newHTTPClient(responseTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = responseTimeout
	return &http.Client{Transport: transport}
}

func (c *container) uploadOrchestrator() (*orchestrator.UploadOrchestrator, error) {
	return orchestrator.NewUploadOrchestrator(
		orchestrator.UploadConfig{
			BaseBranch: c.cfg.BaseBranch,
			Templates: usecase.NameTemplates{
				Branch: c.cfg.BranchTemplate,
				Commit: c.cfg.CommitTemplate,
				Title:  c.cfg.TitleTemplate,
			},
			RetryCount:            c.cfg.RetryCount,
			RetryDelay:            c.cfg.RetryDelay,
			CleanupOrphanedBranch: c.cfg.CleanupOrphanedBranch,
		},
		c.credentials,
		c.repoFactory,
		c.logger,
	)
}

func (c *container) checkOrchestrator() *orchestrator.CheckOrchestrator {
	return orchestrator.NewCheckOrchestrator(c.credentials, c.repoFactory, c.cfg.BaseBranch, c.logger)
}

// InitCommands initializes all commands. Dependencies are built when a
// command runs so that version works without configuration.
func InitCommands() error {
	rootCmd.AddCommand(newServeCmd(), newCheckCmd(), newVersionCmd())
	return nil
}
