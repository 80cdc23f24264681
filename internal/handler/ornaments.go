package handler

import (
	"net/http"

	"jewelpos/internal/apierror"
	"jewelpos/internal/dto"
	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
)

type OrnamentsHandler struct{ svc service.OrnamentService }

func NewOrnamentsHandler(svc service.OrnamentService) *OrnamentsHandler {
	return &OrnamentsHandler{svc: svc}
}

// Add godoc
// @Summary      Register an ornament
// @Description  Allocates the next ID for the ornament type (R001, N001, ...) and returns the QR label payload.
// @Tags         ornaments
// @Accept       json
// @Produce      json
// @Param        body body dto.AddOrnamentRequest true "Ornament details"
// @Success      201  {object} dto.AddOrnamentResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/ornaments [post]
func (h *OrnamentsHandler) Add(c *gin.Context) {
	var req dto.AddOrnamentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddOrnament(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListStock godoc
// @Summary      List stock
// @Tags         ornaments
// @Produce      json
// @Param        type     query string false "Ornament type"
// @Param        status   query string false "in_stock | sold"
// @Param        merchant query string false "Merchant code"
// @Param        purity   query string false "18K | 22K | 24K"
// @Param        search   query string false "Ornament ID or merchant code fragment"
// @Success      200 {array}  dto.StockItem
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ornaments [get]
func (h *OrnamentsHandler) ListStock(c *gin.Context) {
	var filter dto.StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	items, err := h.svc.ListStock(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAvailable godoc
// @Summary      Unsold ornaments of one type
// @Description  Each item carries the suggested selling price (cost + 3%).
// @Tags         ornaments
// @Produce      json
// @Param        type query string true "Ornament type"
// @Success      200 {object} dto.AvailableItemsResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/ornaments/available [get]
func (h *OrnamentsHandler) ListAvailable(c *gin.Context) {
	items, err := h.svc.ListAvailable(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailableItemsResponse{Success: true, Items: items})
}

// QRCode godoc
// @Summary      Ornament QR label
// @Tags         ornaments
// @Produce      png
// @Param        ornamentId path string true "Ornament ID, e.g. R001"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ornaments/{ornamentId}/qr [get]
func (h *OrnamentsHandler) QRCode(c *gin.Context) {
	png, err := h.svc.QRCodePNG(c.Request.Context(), c.Param("ornamentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Scan godoc
// @Summary      Scan an ornament
// @Description  Accepts the JSON QR payload or a bare ornament ID and returns the item with its selling price.
// @Tags         ornaments
// @Accept       json
// @Produce      json
// @Param        body body dto.ScanRequest true "Scanned code"
// @Success      200  {object} dto.ScanResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/scan [post]
func (h *OrnamentsHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ScanItem(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
