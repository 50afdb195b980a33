package gate

import "github.com/labstack/echo/v4"

// Guard inspects a request. A nil error passes it through; any error
// short-circuits the request with that error.
type Guard interface {
	Check(c echo.Context) error
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(c echo.Context) error

// Check calls f.
func (f GuardFunc) Check(c echo.Context) error { return f(c) }

// Pipeline is an ordered list of guards.
type Pipeline []Guard

// Wrap returns a handler that runs every guard in order and then h.
func (p Pipeline) Wrap(h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		for _, g := range p {
			if err := g.Check(c); err != nil {
				return err
			}
		}
		return h(c)
	}
}

// Middleware exposes the pipeline as echo route middleware.
func (p Pipeline) Middleware() echo.MiddlewareFunc {
	return p.Wrap
}

// Policy is the access requirement of a route.
type Policy int

const (
	// Public routes run without a token.
	Public Policy = iota
	// Member routes need a verified token.
	Member
	// Admin routes need a verified token and a stored admin role.
	Admin
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case Member:
		return "member"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}
