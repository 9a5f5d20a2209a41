package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

// fakeUserStore records the role each account was created with.
type fakeUserStore struct {
	nextID uint64
	roles  map[string]string // email → role
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{roles: make(map[string]string)}
}

func (s *fakeUserStore) Create(_ context.Context, email, _ string, role string, _ int) (uint64, error) {
	if _, ok := s.roles[email]; ok {
		return 0, repository.ErrEmailExists
	}
	s.roles[email] = role
	s.nextID++
	return s.nextID, nil
}

func (s *fakeUserStore) GetByEmail(context.Context, string) (model.User, error) {
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(context.Context, uint64) (model.User, error) {
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) Count(context.Context) (uint64, error) {
	return uint64(len(s.roles)), nil
}

func authTestConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTTLMin: 5, BcryptCost: 4}
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// tokenRole extracts the role claim from a signed access token.
func tokenRole(t *testing.T, cfg config.Config, signed string) string {
	t.Helper()
	tok, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	role, _ := claims["role"].(string)
	return role
}

func TestRegister_ClientRoleFieldIgnored(t *testing.T) {
	cfg := authTestConfig()
	store := newFakeUserStore()
	h := NewAuthHandler(cfg, store)

	// A role field in the body must not influence the created account.
	c, rec := postJSON("/v1/auth/register",
		`{"email":"eve@example.com","password":"hunter22","role":"ADMIN"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, model.RolePassenger, store.roles["eve@example.com"])
	assert.Contains(t, rec.Body.String(), `"role":"PASSENGER"`)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RolePassenger, tokenRole(t, cfg, resp.Access.Token))
}

func TestAdminCreateUser_Roles(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		body     string
		wantCode int
		wantRole string
	}{
		{"admin", "ops@example.com",
			`{"email":"ops@example.com","password":"pw","role":"ADMIN"}`, http.StatusCreated, model.RoleAdmin},
		{"passenger lowercase", "p@example.com",
			`{"email":"p@example.com","password":"pw","role":"passenger"}`, http.StatusCreated, model.RolePassenger},
		{"role omitted", "d@example.com",
			`{"email":"d@example.com","password":"pw"}`, http.StatusCreated, model.RolePassenger},
		{"unknown role", "x@example.com",
			`{"email":"x@example.com","password":"pw","role":"OPERATOR"}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeUserStore()
			h := &AdminHandler{Cfg: authTestConfig(), Users: store}

			c, rec := postJSON("/v1/admin/users", tc.body)
			require.NoError(t, h.CreateUser(c))
			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantRole != "" {
				assert.Equal(t, tc.wantRole, store.roles[tc.email])
			} else {
				assert.Empty(t, store.roles)
			}
		})
	}
}

func TestAdminCreateUser_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	h := &AdminHandler{Cfg: authTestConfig(), Users: store}

	c, rec := postJSON("/v1/admin/users", `{"email":"a@example.com","password":"pw"}`)
	require.NoError(t, h.CreateUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = postJSON("/v1/admin/users", `{"email":"a@example.com","password":"pw"}`)
	require.NoError(t, h.CreateUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
