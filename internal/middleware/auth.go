package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MILO-debug/POS/internal/apierror"
)

// JWTClaims carried by both access and refresh tokens. TokenType
// distinguishes the two so a refresh token cannot be used as a bearer token.
type JWTClaims struct {
	UserID       string `json:"uid"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	EmployeeName string `json:"employeeName,omitempty"`
	TokenType    string `json:"token_type"` // "access" | "refresh"
	jwt.RegisteredClaims
}

const claimsKey = "auth_claims"

// JWTAuth validates the Authorization bearer token and stores its claims on
// the request context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("missing bearer token"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
	}
}

// GetClaims returns the verified claims for the request, or nil.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
