package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myschoolct/portal-assistant/internal/assistant"
	"github.com/myschoolct/portal-assistant/internal/buildinfo"
	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/ctxutil"
	"github.com/myschoolct/portal-assistant/internal/storage"
)

// channelWeb labels requests from the website chat widget.
const channelWeb = "web"

// readinessTimeout bounds the database ping in /readyz.
const readinessTimeout = 3 * time.Second

func (a *Application) handleChat(c *gin.Context) {
	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.RecordHTTPError("invalid_request", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and sessionId are required"})
		return
	}

	ctx, cancel := context.WithTimeout(ctxutil.WithChannel(c.Request.Context(), channelWeb), config.ChatProcessing)
	defer cancel()

	c.JSON(http.StatusOK, a.assistant.Chat(ctx, req))
}

// handleAutocomplete accepts a JSON body on POST and query parameters on GET.
func (a *Application) handleAutocomplete(c *gin.Context) {
	var req assistant.AutocompleteRequest
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		a.metrics.RecordHTTPError("invalid_request", "autocomplete")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid autocomplete request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ChatProcessing)
	defer cancel()

	c.JSON(http.StatusOK, a.assistant.Autocomplete(ctx, req))
}

type topQueriesParams struct {
	Days   int    `form:"days,default=7" binding:"min=1,max=365"`
	Prefix string `form:"prefix"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
}

func (a *Application) handleTopQueries(c *gin.Context) {
	var p topQueriesParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	since := time.Now().AddDate(0, 0, -p.Days)
	stats, err := a.db.TopQueries(c.Request.Context(), since, p.Prefix, p.Limit)
	if err != nil {
		a.logger.WithError(err).Error("Failed to load top queries")
		a.metrics.RecordHTTPError("storage", "analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics unavailable"})
		return
	}
	if stats == nil {
		stats = []storage.QueryStat{}
	}

	c.JSON(http.StatusOK, gin.H{
		"since":   since.UTC().Format(time.RFC3339),
		"queries": stats,
	})
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": buildinfo.Release(),
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"features": a.features(),
	})
}

func (a *Application) features() map[string]bool {
	return map[string]bool{
		"llm":    a.chain != nil,
		"line":   a.webhook != nil,
		"backup": a.backup != nil,
	}
}
