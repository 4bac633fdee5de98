package ports

import (
	"context"

	"vtds-application-vshasta/internal/core/domain"
)

// ProviderClient is the application layer's view of the vTDS provider
// layer: virtual blades and site level settings.
type ProviderClient interface {
	BladeClasses(ctx context.Context) ([]string, error)
	BladeCount(ctx context.Context, bladeClass string) (int, error)
	BladeEndpoints(ctx context.Context, bladeClass string) ([]domain.Endpoint, error)
	SiteConfig(ctx context.Context) (*domain.SiteConfig, error)
}
