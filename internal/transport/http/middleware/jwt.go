package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"suggestboard/internal/graph"
	"suggestboard/internal/pkg/jwtutil"
)

// Identity resolves a bearer token into a request-scoped identity claim.
// It is deliberately permissive: a missing, malformed, or expired token
// leaves the request anonymous instead of rejecting it, so resolvers like
// me can return null.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))

		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
			if claims, ok := jwtutil.Verify(secret, token); ok {
				ctx := graph.WithClaims(c.Request.Context(), claims)
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()
	}
}
