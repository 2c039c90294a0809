package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"investorwatch/internal/service"
)

// ScheduleHandler reads and updates the daily run schedule.
type ScheduleHandler struct {
	Service *service.ScheduleService
	Logger  *zap.Logger
}

func (h *ScheduleHandler) Register(r *gin.Engine) {
	group := r.Group("/api/schedule")
	group.GET("", h.get)
	group.PUT("", h.update)
}

type scheduleRequest struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Timezone string `json:"timezone"`
}

// @Summary Get the ingest schedule
// @Tags schedule
// @Success 200 {object} apiResponse
// @Router /api/schedule [get]
func (h *ScheduleHandler) get(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	item, err := h.Service.GetOrCreate(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("get schedule failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update the ingest schedule
// @Tags schedule
// @Param request body scheduleRequest true "new schedule"
// @Success 200 {object} apiResponse
// @Router /api/schedule [put]
func (h *ScheduleHandler) update(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	item, err := h.Service.Update(c.Request.Context(), req.Hour, req.Minute, req.Timezone)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSchedule) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("update schedule failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
