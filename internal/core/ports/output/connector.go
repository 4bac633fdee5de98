package ports

import (
	"context"
	"io/fs"

	"vtds-application-vshasta/internal/core/domain"
)

// Connection is an open shell connection to one deployment target.
type Connection interface {
	// Copy stages a local file on the target with the given mode.
	Copy(ctx context.Context, localPath, remotePath string, mode fs.FileMode) error
	// Run executes a command on the target and returns its combined
	// output.
	Run(ctx context.Context, cmd string) (string, error)
	Close() error
}

// Connector opens connections to blade and node endpoints for deployment.
type Connector interface {
	Connect(ctx context.Context, ep domain.Endpoint) (Connection, error)
}
