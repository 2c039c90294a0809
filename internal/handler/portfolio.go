package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"investorwatch/internal/repository"
)

// PortfolioHandler serves the reconciled snapshot tables.
type PortfolioHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *PortfolioHandler) Register(r *gin.Engine) {
	group := r.Group("/api")
	group.GET("/holdings", h.listHoldings)
	group.GET("/deals/bulk", h.listBulkDeals)
	group.GET("/deals/block", h.listBlockDeals)
}

// @Summary List current holdings
// @Tags portfolio
// @Success 200 {object} apiResponse
// @Router /api/holdings [get]
func (h *PortfolioHandler) listHoldings(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Repo.ListHoldingsView(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list holdings failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary List current bulk deals
// @Tags portfolio
// @Success 200 {object} apiResponse
// @Router /api/deals/bulk [get]
func (h *PortfolioHandler) listBulkDeals(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Repo.ListBulkDealsView(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list bulk deals failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

// @Summary List current block deals
// @Tags portfolio
// @Success 200 {object} apiResponse
// @Router /api/deals/block [get]
func (h *PortfolioHandler) listBlockDeals(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	items, err := h.Repo.ListBlockDealsView(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list block deals failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
