package publication

import (
	"context"

	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/models"
)

// NoopRemotePublisher is used when no CMS push transport is configured.
// The sweep still flips item state and writes the audit trail, it just
// skips the outbound call.
type NoopRemotePublisher struct {
	log logger.Logger
}

func NewNoopRemotePublisher(log logger.Logger) *NoopRemotePublisher {
	return &NoopRemotePublisher{log: log}
}

func (p *NoopRemotePublisher) Publish(ctx context.Context, integration *models.CmsIntegration, item *models.ContentScheduleItem) error {
	p.log.Debugf("noop publish of item %s to %s", item.ID, integration.SiteURL)
	return nil
}
