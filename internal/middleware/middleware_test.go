package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/my", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RolePassenger, 5)
	require.NoError(t, err)

	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 42, c.Get("user_id"))
	assert.Equal(t, model.RolePassenger, c.Get("role"))
}

func TestJWTAuth_Rejections(t *testing.T) {
	other, err := utils.NewAccessToken("another-secret", 42, model.RolePassenger, 5)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not.a.jwt",
		"wrong secret":   "Bearer " + other.Token,
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := doRequest(t, JWTAuth(testSecret), authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleAdmin)

	run := func(role interface{}) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/trains", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run(model.RolePassenger))
	assert.Equal(t, http.StatusForbidden, run(nil))
	assert.Equal(t, http.StatusForbidden, run("SOMETHING_ELSE"))
}

func TestBuildRateKey_Strategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.Header.Set("X-Real-IP", "10.1.2.3")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings")
	c.Set("user_id", float64(7))

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.1.2.3:user:7:route:POST /v1/bookings", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:7", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.1.2.3", buildRateKey(cfg, c))
}

func TestBuildRateKey_AnonymousUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/schedules")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.EqualValues(t, 5, asInt64(int64(5)))
	assert.EqualValues(t, 5, asInt64(5))
	assert.EqualValues(t, 5, asInt64("5"))
	assert.EqualValues(t, 0, asInt64("nope"))
	assert.EqualValues(t, 0, asInt64(nil))
}

func TestCacheKeyFrom_QueryOrderIndependent(t *testing.T) {
	e := echo.New()
	mk := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		return cacheKeyFrom("cache", c)
	}

	a := mk("/v1/schedules?a=1&b=2")
	b := mk("/v1/schedules?b=2&a=1")
	other := mk("/v1/schedules?a=1&b=3")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.True(t, len(a) > len("cache:"))
}
