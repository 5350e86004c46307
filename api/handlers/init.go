package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/services"
)

type Handlers struct {
	Publish   *PublishHandler
	Binding   *BindingHandler
	Ingestion *IngestionHandler
	Dashboard *DashboardHandler
}

func InitHandlers(s *services.Services) *Handlers {
	return &Handlers{
		Publish:   NewPublishHandler(s.PublicationService),
		Binding:   NewBindingHandler(s.BindingService),
		Ingestion: NewIngestionHandler(s.IngestionService),
		Dashboard: NewDashboardHandler(s.DashboardService, s.TenantResolver),
	}
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, er.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, er.ErrTenantNotFound), errors.Is(err, er.ErrResolutionFailed):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, er.ErrValidationFailed),
		errors.Is(err, er.ErrInvalidEmail),
		errors.Is(err, er.ErrMissingTarget),
		errors.Is(err, er.ErrTenantMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
