package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/tracing"
)

type IngestionHandler struct {
	ingestionService interfaces.IngestionService
}

func NewIngestionHandler(ingestionService interfaces.IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestionService: ingestionService}
}

type IngestKpisRequest struct {
	Target interfaces.IngestTarget        `json:"target"`
	Rows   []interfaces.KpiSnapshotInput  `json:"rows"`
}

type IngestTrafficRequest struct {
	Target interfaces.IngestTarget       `json:"target"`
	Rows   []interfaces.TrafficStatInput `json:"rows"`
}

type IngestKeywordsRequest struct {
	Target interfaces.IngestTarget          `json:"target"`
	Rows   []interfaces.KeywordRankingInput `json:"rows"`
}

func (h *IngestionHandler) IngestKpis() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.IngestKpis")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request IngestKpisRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		written, err := h.ingestionService.IngestKpiSnapshots(ctx, request.Target, request.Rows)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"written": len(written), "rows": written})
	}
}

func (h *IngestionHandler) IngestTraffic() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.IngestTraffic")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request IngestTrafficRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		written, err := h.ingestionService.IngestTrafficStats(ctx, request.Target, request.Rows)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"written": len(written), "rows": written})
	}
}

func (h *IngestionHandler) IngestKeywords() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IngestionHandler.IngestKeywords")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request IngestKeywordsRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		written, err := h.ingestionService.IngestKeywordRankings(ctx, request.Target, request.Rows)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"written": len(written), "rows": written})
	}
}
