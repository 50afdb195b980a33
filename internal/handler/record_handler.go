package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/service"
)

// recordHandler holds the handlers shared by every pass-through collection.
// The exported per-collection handlers embed it and carry the route docs.
type recordHandler struct {
	svc    service.RecordService
	logger *zap.Logger
}

func (h *recordHandler) create(c echo.Context) error {
	doc, err := bindDocument(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	res, err := h.svc.Create(c.Request().Context(), doc)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *recordHandler) list(c echo.Context) error {
	docs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return renderList(c, docs)
}

func (h *recordHandler) listByEmail(c echo.Context) error {
	docs, err := h.svc.ListByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return renderList(c, docs)
}

// get renders the record or JSON null when the id matches nothing.
func (h *recordHandler) get(c echo.Context) error {
	doc, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *recordHandler) patch(c echo.Context) error {
	fields, err := bindDocument(c)
	if err != nil {
		return fail(c, h.logger, err)
	}
	res, err := h.svc.Patch(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}
