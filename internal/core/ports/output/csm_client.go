package ports

import (
	"context"

	"vtds-application-vshasta/internal/core/domain"
)

// CSMClient inspects a deployed CSM system through its Kubernetes API.
type CSMClient interface {
	IsAvailable() bool
	NodeStatuses(ctx context.Context) ([]domain.CSMNodeStatus, error)
}
