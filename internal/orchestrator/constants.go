package orchestrator

import "time"

var (
	// CompensationTimeout bounds cleanup after a failed upload
	CompensationTimeout = 30 * time.Second
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = 1 * time.Second
)

// Keys of the data recorded by completed steps.
const (
	dataKeyBranchName       = "branch_name"
	dataKeyCreatedInSession = "created_in_session"
	dataKeySHA              = "sha"
	dataKeyPath             = "path"
	dataKeyPRNumber         = "pr_number"
	dataKeyPRURL            = "html_url"
	dataKeyTokenExpiry      = "expires_at"
)
