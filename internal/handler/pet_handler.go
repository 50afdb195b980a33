package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/service"
)

// PetHandler serves the pets collection.
type PetHandler struct {
	recordHandler
}

// NewPetHandler creates a pet handler.
func NewPetHandler(svc service.RecordService, logger *zap.Logger) *PetHandler {
	return &PetHandler{recordHandler{svc: svc, logger: logger}}
}

// ListPets godoc
// @Summary List pets
// @Tags pets
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} errors.ErrorResponse
// @Router /pets [get]
func (h *PetHandler) ListPets(c echo.Context) error { return h.list(c) }

// ListPetsByEmail godoc
// @Summary List pets added by a user
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param email path string true "Owner email"
// @Success 200 {array} object
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pets/{email} [get]
func (h *PetHandler) ListPetsByEmail(c echo.Context) error { return h.listByEmail(c) }

// GetPet godoc
// @Summary Get pet details
// @Tags pets
// @Produce json
// @Param id path string true "Pet ID"
// @Success 200 {object} object
// @Failure 500 {object} errors.ErrorResponse
// @Router /petDetails/{id} [get]
func (h *PetHandler) GetPet(c echo.Context) error { return h.get(c) }

// CreatePet godoc
// @Summary Add a pet
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pet body object true "Pet"
// @Success 200 {object} store.InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pets [post]
func (h *PetHandler) CreatePet(c echo.Context) error { return h.create(c) }

// UpdatePet godoc
// @Summary Update pet fields
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Param fields body object true "Fields to set"
// @Success 200 {object} store.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pets/{id} [patch]
func (h *PetHandler) UpdatePet(c echo.Context) error { return h.patch(c) }
