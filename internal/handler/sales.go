package handler

import (
	"fmt"
	"net/http"

	"jewelpos/internal/dto"
	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Complete godoc
// @Summary      Complete a sale
// @Description  Atomically creates the bill, finds or creates the client by phone and marks every ornament sold. Either all of it happens or none of it.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body dto.CompleteSaleRequest true "Cart"
// @Success      201  {object} dto.CompleteSaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Complete(c *gin.Context) {
	var req dto.CompleteSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompleteSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List sales, newest first
// @Tags         sales
// @Produce      json
// @Success      200 {array} dto.SaleListItem
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	sales, err := h.svc.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// GetBill godoc
// @Summary      Fetch a bill
// @Tags         bills
// @Produce      json
// @Param        billId path string true "Numeric ID or bill number (BILL-000001)"
// @Success      200 {object} dto.BillResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/bills/{billId} [get]
func (h *SalesHandler) GetBill(c *gin.Context) {
	bill, err := h.svc.FetchBill(c.Request.Context(), c.Param("billId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// BillPDF godoc
// @Summary      Download a bill as PDF
// @Tags         bills
// @Produce      application/pdf
// @Param        billId path string true "Numeric ID or bill number (BILL-000001)"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/bills/{billId}/pdf [get]
func (h *SalesHandler) BillPDF(c *gin.Context) {
	data, number, err := h.svc.RenderBillPDF(c.Request.Context(), c.Param("billId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, number))
	c.Data(http.StatusOK, "application/pdf", data)
}
