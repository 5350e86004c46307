package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type DashboardHandler struct {
	dashboardService interfaces.DashboardService
	tenantResolver   interfaces.TenantResolver
}

func NewDashboardHandler(dashboardService interfaces.DashboardService, tenantResolver interfaces.TenantResolver) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		tenantResolver:   tenantResolver,
	}
}

// ResolveTenant returns the tenant context of the authenticated caller,
// provisioning a personal workspace on first use.
func (h *DashboardHandler) ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DashboardHandler.ResolveTenant")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		userId := utils.GetUserIdFromContext(ctx)
		if userId == "" {
			err := errors.Wrap(er.ErrResolutionFailed, "missing user in context")
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		tenantId, role, err := h.tenantResolver.ResolveOrCreateTenant(ctx, userId)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tenantId": tenantId, "role": role})
	}
}

// Overview returns the aggregated dashboard data. Tenants come from the
// tenantIds query parameter; without it the caller's own tenant is used.
func (h *DashboardHandler) Overview() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DashboardHandler.Overview")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var tenantIds []string
		if raw := c.Query("tenantIds"); raw != "" {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					tenantIds = append(tenantIds, id)
				}
			}
		}
		if len(tenantIds) == 0 {
			userId := utils.GetUserIdFromContext(ctx)
			if userId == "" {
				tracing.TraceErr(span, er.ErrTenantMissing)
				respondError(c, er.ErrTenantMissing)
				return
			}
			tenantId, _, err := h.tenantResolver.ResolveOrCreateTenant(ctx, userId)
			if err != nil {
				tracing.TraceErr(span, err)
				respondError(c, err)
				return
			}
			tenantIds = []string{tenantId}
		}

		var since *time.Time
		if raw := c.Query("since"); raw != "" {
			parsed, err := utils.ParsePeriod(raw)
			if err != nil {
				tracing.TraceErr(span, err)
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			since = &parsed
		}

		overview, err := h.dashboardService.Overview(ctx, tenantIds, since)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, overview)
	}
}

// Companies lists every company with the tenants it owns.
func (h *DashboardHandler) Companies() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DashboardHandler.Companies")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		groups, err := h.dashboardService.GroupedListing(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"companies": groups})
	}
}
