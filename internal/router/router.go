package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"foreverhome/internal/gate"
	"foreverhome/internal/handler"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health    *handler.HealthHandler
	Users     *handler.UserHandler
	Pets      *handler.PetHandler
	Adoptions *handler.AdoptionHandler
	Campaigns *handler.CampaignHandler
	Auth      *handler.AuthHandler
}

// Options carries router settings taken from configuration.
type Options struct {
	CORSOrigins []string
}

// Route binds a handler to a method, path and access policy.
type Route struct {
	Method  string
	Path    string
	Policy  gate.Policy
	Handler echo.HandlerFunc
}

// Routes is the full API surface and the policy each route requires.
func Routes(h Handlers) []Route {
	return []Route{
		{http.MethodGet, "/", gate.Public, h.Health.Greeting},
		{http.MethodGet, "/healthz", gate.Public, h.Health.Health},

		{http.MethodPost, "/users", gate.Public, h.Users.CreateUser},
		{http.MethodGet, "/users", gate.Admin, h.Users.ListUsers},
		{http.MethodGet, "/users/:email", gate.Member, h.Users.GetUser},

		{http.MethodGet, "/pets", gate.Public, h.Pets.ListPets},
		{http.MethodGet, "/pets/:email", gate.Member, h.Pets.ListPetsByEmail},
		{http.MethodGet, "/petDetails/:id", gate.Public, h.Pets.GetPet},
		{http.MethodPost, "/pets", gate.Member, h.Pets.CreatePet},
		{http.MethodPatch, "/pets/:id", gate.Member, h.Pets.UpdatePet},

		{http.MethodPost, "/adoptionRequests", gate.Member, h.Adoptions.CreateAdoptionRequest},
		{http.MethodGet, "/adoptionRequests/:email", gate.Member, h.Adoptions.ListAdoptionRequestsByEmail},
		{http.MethodPatch, "/adoptionRequests/:id", gate.Member, h.Adoptions.UpdateAdoptionRequest},

		{http.MethodPost, "/donationCampaigns", gate.Member, h.Campaigns.CreateCampaign},
		{http.MethodGet, "/donationCampaigns", gate.Public, h.Campaigns.ListCampaigns},
		{http.MethodPatch, "/donationCampaignEdit/:id", gate.Member, h.Campaigns.EditCampaign},
		{http.MethodGet, "/donationCampaignsDetails/:id", gate.Public, h.Campaigns.GetCampaign},
		{http.MethodGet, "/donationCampaigns/:email", gate.Member, h.Campaigns.ListCampaignsByEmail},
		{http.MethodPatch, "/donationCampaigns/:id", gate.Admin, h.Campaigns.PauseCampaign},

		{http.MethodPost, "/auth/logout", gate.Member, h.Auth.Logout},
	}
}

// Register wires middleware and routes.
func Register(e *echo.Echo, g *gate.Gate, h Handlers, opts Options, logger *zap.Logger) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(requestLogger(logger))

	e.Validator = NewValidator()

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	for _, r := range Routes(h) {
		e.Add(r.Method, r.Path, r.Handler, g.Pipeline(r.Policy).Middleware())
	}
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by the API.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
