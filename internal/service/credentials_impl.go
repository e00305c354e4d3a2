package service

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/compozy/pyqs-uploader/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v74/github"
)

const installationsPerPage = 100

// CredentialConfig configures a CredentialService.
type CredentialConfig struct {
	AppID         int64
	PrivateKeyPEM []byte
	HTTPClient    *http.Client
	BaseURL       string
	// InstallationID pins the installation; zero means discover it.
	InstallationID int64
	// InstallationAccount selects the installation by account login when
	// the app is installed more than once.
	InstallationAccount string
	// Now defaults to time.Now.
	Now func() time.Time
}

// credentialService is the implementation of the CredentialService interface.
type credentialService struct {
	appID               int64
	privateKey          *rsa.PrivateKey
	httpClient          *http.Client
	baseURL             string
	installationID      int64
	installationAccount string
	now                 func() time.Time
}

// NewCredentialService parses the private key and returns a CredentialService.
func NewCredentialService(cfg CredentialConfig) (CredentialService, error) {
	if cfg.AppID <= 0 {
		return nil, fmt.Errorf("app id must be positive")
	}
	key, err := ParsePrivateKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &credentialService{
		appID:               cfg.AppID,
		privateKey:          key,
		httpClient:          cfg.HTTPClient,
		baseURL:             cfg.BaseURL,
		installationID:      cfg.InstallationID,
		installationAccount: strings.TrimSpace(cfg.InstallationAccount),
		now:                 now,
	}, nil
}

// ParsePrivateKey decodes a PEM RSA key in PKCS1 or PKCS8 form.
func ParsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// MintAssertion signs {iat, exp, iss} with RS256.
func (s *credentialService) MintAssertion() (string, error) {
	issuedAt := s.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(AssertionLifetime * time.Second)),
		Issuer:    strconv.FormatInt(s.appID, 10),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}

// InstallationToken mints an assertion, resolves the installation and
// requests an access token for it.
func (s *credentialService) InstallationToken(ctx context.Context) (*domain.InstallationToken, error) {
	assertion, err := s.MintAssertion()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteAuth, err)
	}
	client, err := repository.NewGithubClient(s.httpClient, s.baseURL, assertion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteAuth, err)
	}
	installationID := s.installationID
	if installationID == 0 {
		installationID, err = s.resolveInstallation(ctx, client)
		if err != nil {
			return nil, err
		}
	}
	token, _, err := client.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create installation token: %w", domain.ErrRemoteAuth, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("%w: token exchange returned empty token", domain.ErrRemoteAuth)
	}
	return &domain.InstallationToken{
		Token:     token.GetToken(),
		ExpiresAt: token.GetExpiresAt().Time,
	}, nil
}

// resolveInstallation lists the app's installations. Exactly one must
// match: the only installation, or the one owned by installationAccount.
func (s *credentialService) resolveInstallation(ctx context.Context, client *github.Client) (int64, error) {
	var all []domain.Installation
	opts := &github.ListOptions{PerPage: installationsPerPage}
	for {
		page, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to list installations: %w", domain.ErrRemoteAuth, err)
		}
		for _, inst := range page {
			all = append(all, domain.Installation{ID: inst.GetID(), Account: inst.GetAccount().GetLogin()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return SelectInstallation(all, s.installationAccount)
}

// SelectInstallation picks the installation an upload should use.
func SelectInstallation(installations []domain.Installation, account string) (int64, error) {
	if account != "" {
		for _, inst := range installations {
			if strings.EqualFold(inst.Account, account) {
				return inst.ID, nil
			}
		}
		return 0, fmt.Errorf("%w for account %q", domain.ErrNoInstallation, account)
	}
	switch len(installations) {
	case 0:
		return 0, domain.ErrNoInstallation
	case 1:
		return installations[0].ID, nil
	default:
		return 0, fmt.Errorf("%w (%d found); set installation_id or installation_account",
			domain.ErrAmbiguousInstallation, len(installations))
	}
}
