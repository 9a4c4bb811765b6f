package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"leakscan/internal/config"
)

const (
	ContextKeySubject = "subject"
	ContextKeyClaims  = "claims"
)

var errInvalidToken = errors.New("invalid token")

// AuthMiddleware returns Gin middleware that verifies HS256 bearer tokens
// issued by the hosting platform. It is a no-op when no secret is configured.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"details": "missing or invalid authorization header",
			})
			return
		}

		claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "), secret, cfg.Issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"details": "invalid or expired token",
			})
			return
		}

		subject, _ := claims.GetSubject()
		c.Set(ContextKeySubject, subject)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func parseToken(tokenStr string, secret []byte, issuer string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// GetSubject returns the verified token subject, or "" when auth is disabled.
func GetSubject(c *gin.Context) string {
	val, exists := c.Get(ContextKeySubject)
	if !exists {
		return ""
	}
	s, _ := val.(string)
	return s
}
