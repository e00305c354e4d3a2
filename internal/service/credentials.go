package service

import (
	"context"

	"github.com/compozy/pyqs-uploader/internal/domain"
)

// AssertionLifetime is how long a signed app assertion stays valid.
const AssertionLifetime = 600 // seconds

// CredentialService mints GitHub App credentials.
type CredentialService interface {
	// MintAssertion returns an RS256 JWT identifying the app, valid for
	// AssertionLifetime seconds from now.
	MintAssertion() (string, error)
	// InstallationToken exchanges a fresh assertion for an installation
	// access token. Each call mints a new assertion and a new token.
	InstallationToken(ctx context.Context) (*domain.InstallationToken, error)
}
