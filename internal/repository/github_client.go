package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/compozy/pyqs-uploader/pkg/version"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

// NewGithubClient returns a go-github client that sends token as a bearer
// credential through httpClient. baseURL may point at GitHub Enterprise or a
// test server.
func NewGithubClient(httpClient *http.Client, baseURL, token string) (*github.Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token), TokenType: "Bearer"},
	)
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	client.UserAgent = version.UserAgent()
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	return client, nil
}
