package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/tracing"
)

type PublishHandler struct {
	publicationService interfaces.PublicationService
}

func NewPublishHandler(publicationService interfaces.PublicationService) *PublishHandler {
	return &PublishHandler{publicationService: publicationService}
}

// RunSweep triggers one publication sweep over all tenants. Exposed on both
// GET and POST because hosted cron services differ in what they can send.
func (h *PublishHandler) RunSweep() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "PublishHandler.RunSweep")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.publicationService.RunSweep(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
