package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/service"
)

// AdoptionHandler serves the adoption requests collection.
type AdoptionHandler struct {
	recordHandler
}

// NewAdoptionHandler creates an adoption request handler.
func NewAdoptionHandler(svc service.RecordService, logger *zap.Logger) *AdoptionHandler {
	return &AdoptionHandler{recordHandler{svc: svc, logger: logger}}
}

// CreateAdoptionRequest godoc
// @Summary Submit an adoption request
// @Tags adoptionRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "Adoption request"
// @Success 200 {object} store.InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adoptionRequests [post]
func (h *AdoptionHandler) CreateAdoptionRequest(c echo.Context) error { return h.create(c) }

// ListAdoptionRequestsByEmail godoc
// @Summary List adoption requests for a user
// @Tags adoptionRequests
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {array} object
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adoptionRequests/{email} [get]
func (h *AdoptionHandler) ListAdoptionRequestsByEmail(c echo.Context) error {
	return h.listByEmail(c)
}

// UpdateAdoptionRequest godoc
// @Summary Update an adoption request
// @Tags adoptionRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Adoption request ID"
// @Param fields body object true "Fields to set"
// @Success 200 {object} store.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adoptionRequests/{id} [patch]
func (h *AdoptionHandler) UpdateAdoptionRequest(c echo.Context) error { return h.patch(c) }
