package handler

import (
	"net/http"

	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard service.DashboardService
	gold      service.GoldPriceService
}

func NewDashboardHandler(dashboard service.DashboardService, gold service.GoldPriceService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, gold: gold}
}

// Summary godoc
// @Summary      Dashboard figures
// @Description  Revenue, in-stock value, recent sales, top merchants and stock by type. Computed per request.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.DashboardSummary
// @Failure      503 {object} apierror.APIError
// @Router       /v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GoldPrice godoc
// @Summary      Gold price per gram (INR)
// @Description  Served from cache; falls back to a default price flagged isDefaultPrice when the provider is down.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.GoldPriceResponse
// @Router       /v1/gold-price [get]
func (h *DashboardHandler) GoldPrice(c *gin.Context) {
	c.JSON(http.StatusOK, h.gold.Current(c.Request.Context()))
}
