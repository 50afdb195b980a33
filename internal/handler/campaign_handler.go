package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/service"
)

// CampaignHandler serves the donation campaigns collection.
type CampaignHandler struct {
	recordHandler
	campaigns service.CampaignService
}

// NewCampaignHandler creates a donation campaign handler.
func NewCampaignHandler(svc service.CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		recordHandler: recordHandler{svc: svc, logger: logger},
		campaigns:     svc,
	}
}

// PauseRequest toggles a campaign's paused state.
type PauseRequest struct {
	Status *bool `json:"status" validate:"required"`
}

// CreateCampaign godoc
// @Summary Create a donation campaign
// @Tags donationCampaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign body object true "Campaign"
// @Success 200 {object} store.InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaigns [post]
func (h *CampaignHandler) CreateCampaign(c echo.Context) error { return h.create(c) }

// ListCampaigns godoc
// @Summary List donation campaigns
// @Tags donationCampaigns
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaigns [get]
func (h *CampaignHandler) ListCampaigns(c echo.Context) error { return h.list(c) }

// ListCampaignsByEmail godoc
// @Summary List campaigns created by a user
// @Tags donationCampaigns
// @Produce json
// @Security BearerAuth
// @Param email path string true "Creator email"
// @Success 200 {array} object
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaigns/{email} [get]
func (h *CampaignHandler) ListCampaignsByEmail(c echo.Context) error { return h.listByEmail(c) }

// GetCampaign godoc
// @Summary Get donation campaign details
// @Tags donationCampaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} object
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaignsDetails/{id} [get]
func (h *CampaignHandler) GetCampaign(c echo.Context) error { return h.get(c) }

// EditCampaign godoc
// @Summary Edit a donation campaign
// @Tags donationCampaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param fields body object true "Fields to set"
// @Success 200 {object} store.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaignEdit/{id} [patch]
func (h *CampaignHandler) EditCampaign(c echo.Context) error { return h.patch(c) }

// PauseCampaign godoc
// @Summary Pause or resume a donation campaign
// @Description Admin only. Sets isPaused to the given status.
// @Tags donationCampaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body PauseRequest true "Pause status"
// @Success 200 {object} store.UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donationCampaigns/{id} [patch]
func (h *CampaignHandler) PauseCampaign(c echo.Context) error {
	var req PauseRequest
	if err := bindStruct(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	res, err := h.campaigns.SetPaused(c.Request().Context(), c.Param("id"), *req.Status)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}
