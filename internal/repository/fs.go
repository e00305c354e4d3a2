package repository

import "github.com/spf13/afero"

// FileSystemRepository defines the interface for filesystem operations.
// The uploader reads its private key file through it.
type FileSystemRepository interface {
	afero.Fs
}
