package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type BindingHandler struct {
	bindingService interfaces.BindingService
}

func NewBindingHandler(bindingService interfaces.BindingService) *BindingHandler {
	return &BindingHandler{bindingService: bindingService}
}

// BindTenant creates or updates a tenant binding. When the request omits
// the user id the authenticated caller is used.
func (h *BindingHandler) BindTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "BindingHandler.BindTenant")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request interfaces.BindTenantRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if request.UserID == "" {
			request.UserID = utils.GetUserIdFromContext(ctx)
		}

		boundTenant, err := h.bindingService.BindTenant(ctx, request)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tenant": boundTenant})
	}
}
