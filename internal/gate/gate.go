// Package gate decides whether a request may reach its handler. Routes declare a
// Policy; the Gate turns it into an ordered Pipeline of guards: authentication
// first, then role authorization. Roles are read from storage on every request.
package gate

import (
	"context"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/auth"
	"foreverhome/internal/errors"
	"foreverhome/internal/model"
)

const identityKey = "identity"

// RoleLookup finds the stored user for a verified email. It returns (nil, nil)
// when no user record exists.
type RoleLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Gate builds guard pipelines from a token verifier and a role lookup.
type Gate struct {
	verifier auth.Verifier
	users    RoleLookup
	logger   *zap.Logger

	authenticate Guard
}

// New creates a Gate.
func New(verifier auth.Verifier, users RoleLookup, logger *zap.Logger) *Gate {
	g := &Gate{verifier: verifier, users: users, logger: logger}
	g.authenticate = g.newAuthenticator()
	return g
}

// Pipeline returns the guards a route with policy p must pass, in order.
// A role guard is never returned without the authenticator in front of it.
func (g *Gate) Pipeline(p Policy) Pipeline {
	switch p {
	case Public:
		return nil
	case Member:
		return Pipeline{g.authenticate}
	case Admin:
		return Pipeline{g.authenticate, g.requireRole(model.RoleAdmin)}
	default:
		// Unknown policies fail closed.
		return Pipeline{GuardFunc(func(echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, forbidden())
		})}
	}
}

// IdentityFrom returns the identity attached by the authenticator.
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	id, ok := c.Get(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// newAuthenticator wraps echo-jwt: it extracts "Authorization: Bearer <token>"
// and hands the raw token to the verifier. A missing or malformed header is
// rejected by the extractor before the verifier is called.
func (g *Gate) newAuthenticator() Guard {
	mw := echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return g.verifier.Verify(c.Request().Context(), raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			g.logger.Debug("authentication failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return echo.NewHTTPError(http.StatusUnauthorized, unauthorized())
		},
	})
	return GuardFunc(func(c echo.Context) error {
		return mw(pass)(c)
	})
}

func (g *Gate) requireRole(want model.Role) Guard {
	return GuardFunc(func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			g.logger.Error("role guard ran without an authenticated identity", zap.String("path", c.Path()))
			internal := errors.NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
			return echo.NewHTTPError(internal.StatusCode, internal.ToErrorResponse())
		}

		user, err := g.users.FindByEmail(c.Request().Context(), id.Email)
		if err != nil {
			g.logger.Error("role lookup failed", zap.String("email", id.Email), zap.Error(err))
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if user == nil || user.Role != want {
			g.logger.Info("role check denied",
				zap.String("email", id.Email),
				zap.String("required", want.String()),
				zap.Bool("has_record", user != nil),
			)
			return echo.NewHTTPError(http.StatusForbidden, forbidden())
		}
		return nil
	})
}

func pass(echo.Context) error { return nil }

func unauthorized() errors.ErrorResponse {
	return errors.MapErrorToHTTP(errors.ErrUnauthorized).ToErrorResponse()
}

func forbidden() errors.ErrorResponse {
	return errors.MapErrorToHTTP(errors.ErrForbidden).ToErrorResponse()
}
