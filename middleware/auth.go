package middleware

import (
	"errors"
	"strings"
	"time"

	"arzaq-api/apperr"
	"arzaq-api/models"
	"arzaq-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User, secret []byte, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken parses and validates a bearer token, distinguishing expired
// tokens from malformed or badly signed ones
func VerifyToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.New(apperr.KindExpiredToken, "token has expired, please log in again")
		}
		return nil, apperr.New(apperr.KindInvalidToken, "invalid token")
	}
	if !token.Valid {
		return nil, apperr.New(apperr.KindInvalidToken, "invalid token")
	}
	return claims, nil
}

// AuthRequired validates the bearer token and injects the actor identity
// into the request context
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			apperr.Abort(c, apperr.New(apperr.KindInvalidToken, "Authorization header required (Bearer <token>)"))
			return
		}
		claims, err := VerifyToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid token is present but lets
// anonymous requests through (public feed reads)
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := VerifyToken(strings.TrimPrefix(authHeader, "Bearer "), secret); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxEmail, claims.Email)
				c.Set(ctxRole, string(claims.Role))
			}
		}
		c.Next()
	}
}

// RoleRequired enforces that the caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := Actor(c).Role
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		apperr.Abort(c, apperr.New(apperr.KindForbiddenRole,
			"this action requires one of the roles: "+rolesString(roles)))
	}
}

func rolesString(roles []models.UserRole) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += string(r)
	}
	return s
}

// Actor extracts the caller identity for policy checks. Anonymous requests
// yield the zero Actor.
func Actor(c *gin.Context) policy.Actor {
	actor := policy.Actor{}
	if v, ok := c.Get(ctxUserID); ok {
		actor.ID = v.(uint)
	}
	if v, ok := c.Get(ctxRole); ok {
		actor.Role = models.UserRole(v.(string))
	}
	return actor
}
