package interfaces

import (
	"context"

	"github.com/rankforge/seoportal/internal/models"
)

// RemotePublisher pushes a scheduled item to the tenant's external CMS.
// The publication engine only cares about success or failure; the real
// transport is supplied by the surrounding application.
type RemotePublisher interface {
	Publish(ctx context.Context, integration *models.CmsIntegration, item *models.ContentScheduleItem) error
}
