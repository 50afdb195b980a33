package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/docs"
	"foreverhome/internal/auth"
	"foreverhome/internal/config"
	"foreverhome/internal/db"
	"foreverhome/internal/gate"
	"foreverhome/internal/handler"
	"foreverhome/internal/kv"
	"foreverhome/internal/logging"
	"foreverhome/internal/model"
	"foreverhome/internal/repository"
	"foreverhome/internal/router"
	"foreverhome/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title ForeverHome API
// @version 1.0
// @description Pet adoption API: pets, users, adoption requests and donation campaigns behind token authentication.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	logger.Info("connected to document store", zap.String("driver", cfg.StoreDriver))

	cacheClient := kv.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, logout will fail and revocation checks are skipped", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(docStore)
	petRepo := repository.NewRecordRepository(docStore, model.CollectionPets)
	adoptionRepo := repository.NewRecordRepository(docStore, model.CollectionAdoptionRequests)
	campaignRepo := repository.NewRecordRepository(docStore, model.CollectionDonationCampaigns)

	// Initialize auth components
	tokenStore := auth.NewTokenStore(cacheClient)
	verifier := auth.WithRevocation(newVerifier(cfg, logger), tokenStore)
	g := gate.New(verifier, userRepo, logger)

	// Initialize handlers
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(docStore, logger),
		Users:     handler.NewUserHandler(service.NewUserService(userRepo), logger),
		Pets:      handler.NewPetHandler(service.NewRecordService(petRepo), logger),
		Adoptions: handler.NewAdoptionHandler(service.NewRecordService(adoptionRepo), logger),
		Campaigns: handler.NewCampaignHandler(service.NewCampaignService(campaignRepo), logger),
		Auth:      handler.NewAuthHandler(tokenStore, logger),
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, g, handlers, router.Options{CORSOrigins: cfg.CORSOrigins}, logger)

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("listening", zap.String("addr", addr), zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := docStore.Close(shutdownCtx); err != nil {
		logger.Error("store close", zap.Error(err))
	}
	if err := cacheClient.Close(); err != nil {
		logger.Error("redis close", zap.Error(err))
	}
}

func newVerifier(cfg *config.Config, logger *zap.Logger) auth.Verifier {
	if cfg.UsesJWKS() {
		logger.Info("verifying tokens against JWKS", zap.String("url", cfg.JWKSURL), zap.String("issuer", cfg.JWTIssuer))
		return auth.NewJWKSVerifier(auth.JWKSConfig{
			URL:                cfg.JWKSURL,
			Issuer:             cfg.JWTIssuer,
			Audience:           cfg.JWTAudience,
			ClockSkew:          cfg.JWTClockSkew,
			RefreshInterval:    cfg.JWKSRefreshInterval,
			MinRefreshInterval: cfg.JWKSMinRefreshInterval,
			HTTPTimeout:        cfg.JWKSHTTPTimeout,
		}, nil)
	}
	logger.Warn("verifying tokens with the shared secret; set JWT_JWKS_URL in production")
	return auth.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTClockSkew)
}
