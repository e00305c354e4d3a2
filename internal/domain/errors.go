package domain

import (
	"errors"
	"fmt"
)

// Validation failures abort an upload before any remote call is made.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidPDF   = fmt.Errorf("%w: please upload a valid PDF file", ErrValidation)
	ErrInvalidPath  = fmt.Errorf("%w: please provide a valid path", ErrValidation)
	ErrMissingField = fmt.Errorf("%w: missing form field", ErrValidation)
)

// Remote failures, one per step of the upload workflow.
var (
	ErrRemoteAuth            = errors.New("remote authentication failed")
	ErrNoInstallation        = fmt.Errorf("%w: app has no installations", ErrRemoteAuth)
	ErrAmbiguousInstallation = fmt.Errorf("%w: app has more than one installation", ErrRemoteAuth)
	ErrRefResolution         = errors.New("failed to resolve base branch")
	ErrBranchCreation        = errors.New("failed to create upload branch")
	ErrCommit                = errors.New("failed to commit file")
	ErrPullRequest           = errors.New("failed to open pull request")
)

// ErrAppCredentialsRequired is returned by every remote operation when the
// server was started without GitHub App credentials.
var ErrAppCredentialsRequired = errors.New("github app credentials are required for uploads")

// Kind names the failure class of an upload error.
type Kind string

const (
	KindNone          Kind = ""
	KindValidation    Kind = "validation"
	KindRemoteAuth    Kind = "remote_auth"
	KindRefResolution Kind = "ref_resolution"
	KindBranch        Kind = "branch_creation"
	KindCommit        Kind = "commit"
	KindPullRequest   Kind = "pull_request"
	KindCredentials   Kind = "credentials"
	KindUnknown       Kind = "unknown"
)

var kindOrder = []struct {
	target error
	kind   Kind
}{
	{ErrValidation, KindValidation},
	{ErrRemoteAuth, KindRemoteAuth},
	{ErrRefResolution, KindRefResolution},
	{ErrBranchCreation, KindBranch},
	{ErrCommit, KindCommit},
	{ErrPullRequest, KindPullRequest},
	{ErrAppCredentialsRequired, KindCredentials},
}

// ErrorKind classifies err against the upload sentinels.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return KindUnknown
}

// MissingFieldError reports an absent required form field.
func MissingFieldError(name string) error {
	return fmt.Errorf("%w %q", ErrMissingField, name)
}
