package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"investorwatch/internal/repository"
	"investorwatch/internal/service"
)

// IngestHandler exposes on-demand runs and per-scope run bookkeeping.
type IngestHandler struct {
	Service *service.IngestService
	Repo    repository.Repository
	Logger  *zap.Logger
}

func (h *IngestHandler) Register(r *gin.Engine) {
	group := r.Group("/api/ingest")
	group.POST("/run", h.run)
	group.GET("/state", h.listState)
}

// @Summary Trigger an ingest run
// @Tags ingest
// @Success 200 {object} apiResponse
// @Router /api/ingest/run [post]
func (h *IngestHandler) run(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	result, err := h.Service.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			Error(c, http.StatusConflict, "run already in progress", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("ingest run failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary List per-scope run state
// @Tags ingest
// @Success 200 {object} apiResponse
// @Router /api/ingest/state [get]
func (h *IngestHandler) listState(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	states, err := h.Repo.ListSyncStates(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list ingest state failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, states, nil)
}
