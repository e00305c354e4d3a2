package service

import (
	"context"
	"fmt"

	"github.com/compozy/pyqs-uploader/internal/domain"
)

type credentialNoopService struct {
	owner string
	repo  string
}

// NewCredentialNoopService is used when the server starts without app
// credentials. The form still renders; every upload fails.
func NewCredentialNoopService(owner, repo string) CredentialService {
	return &credentialNoopService{owner: owner, repo: repo}
}

func (s *credentialNoopService) MintAssertion() (string, error) {
	return "", s.operationError("mint app assertion")
}

func (s *credentialNoopService) InstallationToken(_ context.Context) (*domain.InstallationToken, error) {
	return nil, s.operationError("obtain installation token")
}

func (s *credentialNoopService) operationError(action string) error {
	return fmt.Errorf("%w: unable to %s for %s/%s", domain.ErrAppCredentialsRequired, action, s.owner, s.repo)
}
