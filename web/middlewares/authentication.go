package middlewares

import (
	"net/http"
	"strings"

	"axiapac.com/selfservice/security"
	"axiapac.com/selfservice/web/common"
	"github.com/gin-gonic/gin"
)

const ClaimsKey = "claims"

// Revoked reports whether a token id was logged out.
type Revoked func(jti string) bool

// Authentication checks for a valid Bearer token and stores its claims.
func Authentication(jwtSecret []byte, revoked Revoked) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("Unauthenticated."))
			return
		}

		claims, err := security.ParseAccessToken(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}
		if revoked != nil && revoked(claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("token revoked"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the claims stored by Authentication.
func Claims(c *gin.Context) *security.AccessClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.AccessClaims)
	return claims
}
