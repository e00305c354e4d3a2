package domain

import "time"

// InstallationToken is a scoped bearer credential for one upload.
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// Installation binds the app to an account.
type Installation struct {
	ID      int64
	Account string
}

// PullRequest is the subset of a created pull request the uploader reports.
type PullRequest struct {
	Number  int
	HTMLURL string
}
