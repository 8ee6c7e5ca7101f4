package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"keepers-ledger/internal/services"
)

const principalKey = "principal"

// requireAuth resolves the caller's identity from a bearer token or,
// failing that, the session cookie. A valid token refreshes the session
// binding so browser calls keep working after the token expires.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := s.principalFromToken(c); ok {
			s.sessions.SetIdentity(c, p.Email, p.Name)
			c.Set(principalKey, p)
			c.Next()
			return
		}
		if email, name := s.sessions.Identity(c); email != "" {
			c.Set(principalKey, services.Principal{Email: email, Name: name})
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}

// requireCatalogAdmin layers the catalog-write policy on top of
// requireAuth.
func (s *Server) requireCatalogAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		user, err := s.identity.Resolve(c.Request.Context(), nil, p)
		if err != nil {
			s.respondErr(c, err)
			c.Abort()
			return
		}
		if !services.CanEditCatalog(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}

// principalFromToken verifies a bearer JWT minted by the identity
// provider and extracts the email and name claims.
func (s *Server) principalFromToken(c *gin.Context) (services.Principal, bool) {
	if s.cfg.JWTSecret == "" {
		return services.Principal{}, false
	}
	header := c.GetHeader("Authorization")
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return services.Principal{}, false
	}
	raw := strings.TrimSpace(header[7:])

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return services.Principal{}, false
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if strings.TrimSpace(email) == "" {
		return services.Principal{}, false
	}
	return services.Principal{Email: email, Name: name}, true
}
