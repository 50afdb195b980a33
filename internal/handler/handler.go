package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/store"
)

// bindDocument decodes the request body into a free-form document. Only the
// body is read; path and query parameters never leak into the record.
func bindDocument(c echo.Context) (store.Document, error) {
	var doc store.Document
	if err := (&echo.DefaultBinder{}).BindBody(c, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidBody, bindMessage(err))
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", apperrors.ErrInvalidBody)
	}
	return doc, nil
}

// bindStruct decodes the body into v and runs the registered validator.
func bindStruct(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidBody, bindMessage(err))
	}
	if err := c.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidBody, err)
	}
	return nil
}

func bindMessage(err error) any {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return err
}

// fail logs err with whatever context it carries and turns it into the JSON
// error response.
func fail(c echo.Context, logger *zap.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)

	fields := []zap.Field{
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	}
	var storeErr *apperrors.StoreError
	if errors.As(err, &storeErr) {
		fields = append(fields,
			zap.String("op", storeErr.Op),
			zap.String("collection", storeErr.Collection),
			zap.Any("filter", storeErr.Filter),
		)
	}
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Debug("request rejected", fields...)
	}

	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// renderList renders a possibly nil result set as a JSON array.
func renderList(c echo.Context, docs []store.Document) error {
	if docs == nil {
		docs = []store.Document{}
	}
	return c.JSON(http.StatusOK, docs)
}
