package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/jwt"
)

const secret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.GET("/admin", jwt.Middleware(secret), func(c *gin.Context) {
		claims, ok := jwt.GetClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Sub)
	})
	return router
}

func serve(t *testing.T, router *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "/admin", http.NoBody)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := jwt.Issue(secret, "operator", time.Hour)
	require.NoError(t, err)

	w := serve(t, newRouter(t), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operator", w.Body.String())
}

func TestMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	wrongSecret, err := jwt.Issue("other-secret", "operator", time.Hour)
	require.NoError(t, err)
	expired, err := jwt.Issue(secret, "operator", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
		{name: "expired", header: "Bearer " + expired},
		{name: "garbage", header: "Bearer not.a.token"},
	}

	router := newRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(t, router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
