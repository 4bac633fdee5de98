package ports

import (
	"context"

	"github.com/google/uuid"

	"vtds-application-vshasta/internal/core/domain"
)

// RunRepository persists deployment run records.
type RunRepository interface {
	Create(ctx context.Context, run *domain.DeploymentRun) error
	Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, errText string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRun, error)
	List(ctx context.Context, limit, offset int) ([]*domain.DeploymentRun, int, error)
}
