package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/service"
	"foreverhome/internal/store"
)

// UserHandler bundles user HTTP handlers.
type UserHandler struct {
	svc    service.UserService
	logger *zap.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// ExistingUserResponse is returned when the email is already registered.
type ExistingUserResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

// CreateUser godoc
// @Summary Register a user
// @Description Stores the profile as a member. Registering an existing email is a no-op.
// @Tags users
// @Accept json
// @Produce json
// @Param user body object true "User profile"
// @Success 200 {object} store.InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	profile, err := bindDocument(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	res, err := h.svc.Register(c.Request().Context(), profile)
	if err != nil {
		return fail(c, h.logger, err)
	}
	if !res.Created {
		return c.JSON(http.StatusOK, ExistingUserResponse{Message: "user already exists"})
	}
	return c.JSON(http.StatusOK, res.Insert)
}

// GetUser godoc
// @Summary Get user by email
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} object
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{email} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	var doc store.Document
	if user != nil {
		doc = user.Doc
	}
	return c.JSON(http.StatusOK, doc)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} object
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return renderList(c, users)
}
