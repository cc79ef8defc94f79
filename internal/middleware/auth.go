package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "session_claims"

	DefaultSessionTTL = 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session token")

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthResult int

const (
	Authorized AuthResult = iota
	Unauthenticated
	Forbidden
)

// SignSession issues an HS256 session token for user.
func SignSession(secret string, user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := time.Now()
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseSession(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Authorize is the single role check for the admin surface: it reads the
// bearer session from the request and matches its role against roles.
func Authorize(c *gin.Context, secret string, roles ...string) (*Claims, AuthResult) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" || secret == "" {
		return nil, Unauthenticated
	}
	claims, err := ParseSession(secret, strings.TrimSpace(raw))
	if err != nil {
		return nil, Unauthenticated
	}
	for _, role := range roles {
		if claims.Role == role {
			return claims, Authorized
		}
	}
	return claims, Forbidden
}

func RequireRole(secret string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, result := Authorize(c, secret, roles...)
		switch result {
		case Unauthenticated:
			helpers.AbortWithError(c, http.StatusUnauthorized, "Authentication required.")
			return
		case Forbidden:
			helpers.AbortWithError(c, http.StatusForbidden, "Insufficient role.")
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func SessionClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
