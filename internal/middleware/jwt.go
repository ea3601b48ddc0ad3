package middleware

import (
	"errors"   // Expired vs invalid tokens
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_tracker/internal/domain" // Principal
	"finance_tracker/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// PrincipalKey is the gin context key holding the authenticated domain.Principal
const PrincipalKey = "principal"

// JWTAuthMiddleware validates bearer tokens and stores the acting user in the context
func JWTAuthMiddleware(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}
		principal, err := tokens.Principal(authHeader)
		if errors.Is(err, utils.ErrTokenExpired) {
			abortUnauthorized(c, "Token expired")
			return
		}
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		c.Set(PrincipalKey, principal) // Store principal in context
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by JWTAuthMiddleware
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized), "message": msg})
}
