package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foreverhome/internal/auth"
	"foreverhome/internal/gate"
	"foreverhome/internal/handler"
	"foreverhome/internal/model"
	"foreverhome/internal/repository"
	"foreverhome/internal/service"
	"foreverhome/internal/store"
	"foreverhome/internal/store/memstore"
)

const testSecret = "router-test-secret"

// memRevocations is an in-process revocation list.
type memRevocations struct {
	mu        sync.Mutex
	ids       map[string]time.Duration
	revokeErr error
}

func (m *memRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.ids[tokenID] = ttl
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[tokenID]
	return ok, nil
}

type stack struct {
	e       *echo.Echo
	store   *memstore.Store
	issuer  *auth.HMACVerifier
	revoked *memRevocations
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := zap.NewNop()
	s := memstore.New()
	hmac := auth.NewHMACVerifier(testSecret, "", "", 0)
	revoked := &memRevocations{ids: map[string]time.Duration{}}

	userRepo := repository.NewUserRepository(s)
	g := gate.New(auth.WithRevocation(hmac, revoked), userRepo, logger)

	e := echo.New()
	Register(e, g, Handlers{
		Health:    handler.NewHealthHandler(s, logger),
		Users:     handler.NewUserHandler(service.NewUserService(userRepo), logger),
		Pets:      handler.NewPetHandler(service.NewRecordService(repository.NewRecordRepository(s, model.CollectionPets)), logger),
		Adoptions: handler.NewAdoptionHandler(service.NewRecordService(repository.NewRecordRepository(s, model.CollectionAdoptionRequests)), logger),
		Campaigns: handler.NewCampaignHandler(service.NewCampaignService(repository.NewRecordRepository(s, model.CollectionDonationCampaigns)), logger),
		Auth:      handler.NewAuthHandler(revoked, logger),
	}, Options{}, logger)

	return &stack{e: e, store: s, issuer: hmac, revoked: revoked}
}

func (s *stack) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := s.issuer.Issue(email, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *stack) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *stack) promote(t *testing.T, email string) {
	t.Helper()
	res, err := s.store.Collection(model.CollectionUsers).UpdateOne(context.Background(),
		store.ByField(model.FieldEmail, email), store.Document{model.FieldRole: model.RoleAdmin.String()})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.MatchedCount)
}

func TestRoutes_PolicyTable(t *testing.T) {
	want := map[string]gate.Policy{
		"GET /":                             gate.Public,
		"GET /healthz":                      gate.Public,
		"POST /users":                       gate.Public,
		"GET /users":                        gate.Admin,
		"GET /users/:email":                 gate.Member,
		"GET /pets":                         gate.Public,
		"GET /pets/:email":                  gate.Member,
		"GET /petDetails/:id":               gate.Public,
		"POST /pets":                        gate.Member,
		"PATCH /pets/:id":                   gate.Member,
		"POST /adoptionRequests":            gate.Member,
		"GET /adoptionRequests/:email":      gate.Member,
		"PATCH /adoptionRequests/:id":       gate.Member,
		"POST /donationCampaigns":           gate.Member,
		"GET /donationCampaigns":            gate.Public,
		"PATCH /donationCampaignEdit/:id":   gate.Member,
		"GET /donationCampaignsDetails/:id": gate.Public,
		"GET /donationCampaigns/:email":     gate.Member,
		"PATCH /donationCampaigns/:id":      gate.Admin,
		"POST /auth/logout":                 gate.Member,
	}

	got := map[string]gate.Policy{}
	for _, r := range Routes(Handlers{
		Health:    &handler.HealthHandler{},
		Users:     &handler.UserHandler{},
		Pets:      &handler.PetHandler{},
		Adoptions: &handler.AdoptionHandler{},
		Campaigns: &handler.CampaignHandler{},
		Auth:      &handler.AuthHandler{},
	}) {
		key := r.Method + " " + r.Path
		_, dup := got[key]
		require.False(t, dup, "duplicate route %s", key)
		got[key] = r.Policy
	}

	assert.Equal(t, want, got)
}

func TestAdminRoute_EndToEnd(t *testing.T) {
	s := newStack(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/users", "", `{"email":"ada@example.com"}`).Code)
	campaign := s.do(http.MethodPost, "/donationCampaigns", s.token(t, "ada@example.com"), `{"petName":"Biscuit","isPaused":false}`)
	require.Equal(t, http.StatusOK, campaign.Code)
	var inserted store.InsertResult
	require.NoError(t, json.Unmarshal(campaign.Body.Bytes(), &inserted))
	pause := "/donationCampaigns/" + inserted.InsertedID

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, pause, "", `{"status":true}`).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, pause, "not-a-jwt", `{"status":true}`).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, pause, s.token(t, "ada@example.com"), `{"status":true}`).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, pause, s.token(t, "ghost@example.com"), `{"status":true}`).Code)

	s.promote(t, "ada@example.com")
	rec := s.do(http.MethodPatch, pause, s.token(t, "ada@example.com"), `{"status":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := s.store.Collection(model.CollectionDonationCampaigns).FindOne(context.Background(), store.ByID(inserted.InsertedID))
	require.NoError(t, err)
	assert.Equal(t, true, doc[model.FieldIsPaused])
	assert.Equal(t, "Biscuit", doc["petName"])
}

func TestListUsers_AdminOnly(t *testing.T) {
	s := newStack(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/users", "", `{"email":"ada@example.com"}`).Code)
	tok := s.token(t, "ada@example.com")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/users", tok, "").Code)

	s.promote(t, "ada@example.com")
	rec := s.do(http.MethodGet, "/users", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1)
}

func TestMemberRoutes_RequireToken(t *testing.T) {
	s := newStack(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/pets", "", `{"name":"Biscuit"}`).Code)
	assert.Equal(t, 0, s.store.Len(model.CollectionPets))

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pets", s.token(t, "ada@example.com"), `{"name":"Biscuit"}`).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/pets", "", "").Code)
}

func TestExpiredToken(t *testing.T) {
	s := newStack(t)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/pets", expired, `{"name":"Biscuit"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, s.store.Len(model.CollectionPets))
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newStack(t)
	tok := s.token(t, "ada@example.com")

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/pets/ada@example.com", tok, "").Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/auth/logout", tok, "").Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/pets/ada@example.com", tok, "").Code)
	assert.Len(t, s.revoked.ids, 1)
	for _, ttl := range s.revoked.ids {
		assert.True(t, ttl > 0 && ttl <= time.Hour)
	}
}

func TestLogout_RevocationUnavailable(t *testing.T) {
	s := newStack(t)
	s.revoked.revokeErr = errors.New("dial tcp 127.0.0.1:6379: connection refused")
	tok := s.token(t, "ada@example.com")

	rec := s.do(http.MethodPost, "/auth/logout", tok, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "LOGOUT_FAILED")
	assert.NotContains(t, rec.Body.String(), "127.0.0.1")
}

func TestLogout_TokenWithoutID(t *testing.T) {
	s := newStack(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/auth/logout", tok, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_NOT_REVOCABLE")
}

func TestMiddleware(t *testing.T) {
	s := newStack(t)

	rec := s.do(http.MethodGet, "/", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodOptions, "/pets", nil)
	req.Header.Set(echo.HeaderOrigin, "https://foreverhome.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	pre := httptest.NewRecorder()
	s.e.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Equal(t, "*", pre.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCampaignEdit_CannotChangePausedFlag(t *testing.T) {
	s := newStack(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/users", "", `{"email":"admin@example.com"}`).Code)
	s.promote(t, "admin@example.com")
	admin := s.token(t, "admin@example.com")
	member := s.token(t, "ada@example.com")

	rec := s.do(http.MethodPost, "/donationCampaigns", member, `{"petName":"Biscuit","maxDonation":500,"isPaused":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var inserted store.InsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inserted))
	id := inserted.InsertedID

	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/donationCampaigns/"+id, admin, `{"status":true}`).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/donationCampaigns/"+id, member, `{"status":false}`).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/donationCampaignEdit/"+id, member, `{"isPaused":false}`).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/donationCampaignEdit/"+id, member, `{"isPaused":false,"maxDonation":750}`).Code)

	doc, err := s.store.Collection(model.CollectionDonationCampaigns).FindOne(context.Background(), store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, true, doc[model.FieldIsPaused])
	assert.Equal(t, float64(750), doc["maxDonation"])
}
