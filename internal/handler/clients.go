package handler

import (
	"net/http"
	"strconv"

	"jewelpos/internal/dto"
	"jewelpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientsHandler struct{ svc service.ClientService }

func NewClientsHandler(svc service.ClientService) *ClientsHandler { return &ClientsHandler{svc: svc} }

// Create godoc
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateClientRequest true "Client"
// @Success      201  {object} dto.ClientResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Success      200 {array} dto.ClientResponse
// @Router       /v1/clients [get]
func (h *ClientsHandler) List(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get godoc
// @Summary      Client with purchase history
// @Tags         clients
// @Produce      json
// @Param        id path int true "Client ID"
// @Success      200 {object} dto.ClientDetail
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/clients/{id} [get]
func (h *ClientsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, service.ErrInvalidClientID)
		return
	}
	detail, err := h.svc.GetClient(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
