package handler

import (
	"net/http"

	"jewelpos/internal/apierror"
	"jewelpos/internal/dto"
	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
)

type MerchantsHandler struct{ svc service.MerchantService }

func NewMerchantsHandler(svc service.MerchantService) *MerchantsHandler {
	return &MerchantsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a merchant
// @Tags         merchants
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateMerchantRequest true "Merchant"
// @Success      201  {object} dto.MerchantResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/merchants [post]
func (h *MerchantsHandler) Create(c *gin.Context) {
	var req dto.CreateMerchantRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMerchant(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List merchants with in-stock totals
// @Tags         merchants
// @Produce      json
// @Param        search query string false "Name, code or phone fragment"
// @Success      200 {array} dto.MerchantListItem
// @Router       /v1/merchants [get]
func (h *MerchantsHandler) List(c *gin.Context) {
	var filter dto.MerchantFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	items, err := h.svc.ListMerchants(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get godoc
// @Summary      Merchant detail with inventory
// @Tags         merchants
// @Produce      json
// @Param        code path string true "Merchant code"
// @Success      200 {object} dto.MerchantDetail
// @Failure      404 {object} apierror.APIError
// @Router       /v1/merchants/{code} [get]
func (h *MerchantsHandler) Get(c *gin.Context) {
	detail, err := h.svc.GetMerchant(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
