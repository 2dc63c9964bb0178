package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookworm/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret"},
	}
}

func signAccessToken(t *testing.T, secret, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   "shopper@example.com",
		"role":    "USER",
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// holderEngine mounts the middleware chain the cart, inventory and checkout
// route groups all use, with a handler that reports the resolved holder.
func holderEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/")
	group.Use(OptionalAuthWithConfig(cfg), HolderIdentity())
	group.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, HolderID(c))
	})
	return engine
}

func resolveHolder(t *testing.T, engine *gin.Engine, decorate func(*http.Request)) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	decorate(req)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// A logged-in shopper who still carries an anonymous session cookie must
// resolve to the same holder everywhere, or the cart they filled would be
// invisible at checkout.
func TestAuthenticatedHolderConsistentAcrossGroups(t *testing.T) {
	cfg := testConfig()
	token := signAccessToken(t, cfg.JWT.Secret, "user-123")

	withAuth := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session_anon"})
	}

	cartHolder := resolveHolder(t, holderEngine(cfg), withAuth)
	checkoutHolder := resolveHolder(t, holderEngine(cfg), withAuth)

	assert.Equal(t, "user-123", cartHolder)
	assert.Equal(t, cartHolder, checkoutHolder)
}

func TestAnonymousHolderUsesSessionCookie(t *testing.T) {
	holder := resolveHolder(t, holderEngine(testConfig()), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session_abc"})
	})
	assert.Equal(t, "session_abc", holder)
}

func TestHolderIdentityMintsSessionForNewVisitor(t *testing.T) {
	engine := holderEngine(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, rec.Body.String(), cookies[0].Value)
}

// An expired or garbage bearer token must not break the request; the shopper
// just falls back to the anonymous session identity.
func TestInvalidTokenFallsBackToSession(t *testing.T) {
	holder := resolveHolder(t, holderEngine(testConfig()), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not-a-token")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session_xyz"})
	})
	assert.Equal(t, "session_xyz", holder)
}
