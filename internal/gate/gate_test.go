package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foreverhome/internal/auth"
	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/model"
)

// MockVerifier is a mock implementation of auth.Verifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

// MockRoleLookup is a mock implementation of RoleLookup.
type MockRoleLookup struct {
	mock.Mock
}

func (m *MockRoleLookup) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type harness struct {
	e        *echo.Echo
	verifier *MockVerifier
	users    *MockRoleLookup
	reached  bool
	seen     *auth.Identity
}

func newHarness(policy Policy) *harness {
	h := &harness{
		e:        echo.New(),
		verifier: new(MockVerifier),
		users:    new(MockRoleLookup),
	}
	g := New(h.verifier, h.users, zap.NewNop())
	h.e.PATCH("/donationCampaigns/:id", func(c echo.Context) error {
		h.reached = true
		h.seen, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	}, g.Pipeline(policy).Middleware())
	return h
}

func (h *harness) do(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/donationCampaigns/abc", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAdminPolicy_Unauthenticated(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		setupMock     func(*MockVerifier)
		expectsVerify bool
	}{
		{
			name:   "missing header",
			header: "",
		},
		{
			name:   "wrong scheme",
			header: "Basic dXNlcjpwYXNz",
		},
		{
			name:   "bearer without token",
			header: "Bearer ",
		},
		{
			name:   "expired token",
			header: "Bearer expired-token",
			setupMock: func(m *MockVerifier) {
				m.On("Verify", mock.Anything, "expired-token").Return(nil, auth.ErrUnverified)
			},
			expectsVerify: true,
		},
		{
			name:   "trust root unreachable",
			header: "Bearer some-token",
			setupMock: func(m *MockVerifier) {
				m.On("Verify", mock.Anything, "some-token").Return(nil, errors.New("dial tcp: connection refused"))
			},
			expectsVerify: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(Admin)
			if tt.setupMock != nil {
				tt.setupMock(h.verifier)
			}

			rec := h.do(tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
			assert.False(t, h.reached)
			if !tt.expectsVerify {
				h.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
			}
			h.verifier.AssertExpectations(t)
			h.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestAdminPolicy_Authorization(t *testing.T) {
	identity := &auth.Identity{Email: "ada@example.com", Subject: "uid-1"}

	tests := []struct {
		name       string
		user       *model.User
		lookupErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "admin reaches handler",
			user:       &model.User{Email: "ada@example.com", Role: model.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "member is forbidden",
			user:       &model.User{Email: "ada@example.com", Role: model.RoleMember},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "unknown role is forbidden",
			user:       &model.User{Email: "ada@example.com", Role: model.RoleUnknown},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "no user record is forbidden",
			user:       nil,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "store failure",
			lookupErr:  apperrors.NewStoreError("findOne", model.CollectionUsers, nil, errors.New("timeout")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(Admin)
			h.verifier.On("Verify", mock.Anything, "good-token").Return(identity, nil)
			if tt.user != nil {
				h.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(tt.user, nil)
			} else {
				h.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, tt.lookupErr)
			}

			rec := h.do("Bearer good-token")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, h.reached)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
			}
			h.verifier.AssertExpectations(t)
			h.users.AssertExpectations(t)
		})
	}
}

func TestAdminPolicy_RoleIsReadEveryRequest(t *testing.T) {
	h := newHarness(Admin)
	h.verifier.On("Verify", mock.Anything, "good-token").Return(&auth.Identity{Email: "ada@example.com"}, nil)
	h.users.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(&model.User{Email: "ada@example.com", Role: model.RoleAdmin}, nil).Once()
	h.users.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(&model.User{Email: "ada@example.com", Role: model.RoleMember}, nil).Once()

	assert.Equal(t, http.StatusOK, h.do("Bearer good-token").Code)
	assert.Equal(t, http.StatusForbidden, h.do("Bearer good-token").Code)
	h.users.AssertNumberOfCalls(t, "FindByEmail", 2)
}

func TestMemberPolicy(t *testing.T) {
	h := newHarness(Member)
	identity := &auth.Identity{Email: "ada@example.com"}
	h.verifier.On("Verify", mock.Anything, "good-token").Return(identity, nil)

	rec := h.do("Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.reached)
	assert.Equal(t, identity, h.seen)
	h.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestPublicPolicy(t *testing.T) {
	h := newHarness(Public)

	rec := h.do("")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.reached)
	assert.Nil(t, h.seen)
	h.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestUnknownPolicyFailsClosed(t *testing.T) {
	h := newHarness(Policy(99))

	rec := h.do("")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, h.reached)
}

func TestAdminPolicy_ExpiredTokenWithRealVerifier(t *testing.T) {
	users := new(MockRoleLookup)
	g := New(auth.NewHMACVerifier("test-secret", "", "", 0), users, zap.NewNop())
	e := echo.New()
	reached := false
	e.PATCH("/donationCampaigns/:id", func(c echo.Context) error {
		reached = true
		return nil
	}, g.Pipeline(Admin).Middleware())

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/donationCampaigns/abc", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestRoleGuardWithoutIdentity(t *testing.T) {
	users := new(MockRoleLookup)
	g := New(new(MockVerifier), users, zap.NewNop())
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := g.requireRole(model.RoleAdmin).Check(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestPipelineOrder(t *testing.T) {
	var order []string
	step := func(name string, err error) Guard {
		return GuardFunc(func(echo.Context) error {
			order = append(order, name)
			return err
		})
	}
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	stop := errors.New("stop")

	err := Pipeline{step("first", nil), step("second", stop), step("third", nil)}.Wrap(func(echo.Context) error {
		order = append(order, "handler")
		return nil
	})(c)

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "member", Member.String())
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "unknown", Policy(7).String())
}
