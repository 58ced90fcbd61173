package api

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ownerKey is the gin context key the identity middleware stores the caller
// identity under.
const ownerKey = "ownerID"

// IdentityMiddleware extracts an optional caller identity from a bearer
// token issued by the external authentication service. The token's subject
// becomes the owner identifier. A missing or invalid token is not an error:
// the caller simply stays anonymous.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.Next()
			return
		}

		const prefix = "Bearer "
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, prefix) {
			c.Next()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, prefix), claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
		if err != nil || !token.Valid {
			log.Printf("Ignoring invalid bearer token: %v", err)
			c.Next()
			return
		}

		if claims.Subject != "" {
			c.Set(ownerKey, claims.Subject)
		}
		c.Next()
	}
}

// OwnerID returns the caller identity set by the identity middleware, or ""
// when the caller is anonymous.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerKey)
}
