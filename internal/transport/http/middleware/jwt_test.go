package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"suggestboard/internal/graph"
	"suggestboard/internal/pkg/jwtutil"
)

func newIdentityRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", Identity(secret), func(c *gin.Context) {
		claims := graph.ClaimsFrom(c.Request.Context())
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.Username)
	})
	return router
}

func whoami(t *testing.T, router *gin.Engine, authorization string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestIdentity_ValidToken(t *testing.T) {
	router := newIdentityRouter("secret")

	token, err := jwtutil.GenerateToken("secret", 1, "alice")
	require.NoError(t, err)

	require.Equal(t, "alice", whoami(t, router, "Bearer "+token))
}

// Every failure mode leaves the request anonymous; none of them rejects it.
func TestIdentity_PermissiveOnFailure(t *testing.T) {
	router := newIdentityRouter("secret")

	wrongSecret, err := jwtutil.GenerateToken("other-secret", 1, "alice")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc",
		"garbage token": "Bearer not.a.jwt",
		"wrong secret":  "Bearer " + wrongSecret,
		"empty bearer":  "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, "anonymous", whoami(t, router, header))
		})
	}
}
