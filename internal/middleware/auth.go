package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sproutly/sproutly-backend/internal/logger"
)

const (
	CtxFamilyID = "family_id"
	CtxUserID   = "user_id"
	CtxRole     = "role"

	RoleParent = "parent"
	RoleChild  = "child"
)

// AuthMiddleware verifies tokens issued by the external auth collaborator.
// This backend never issues tokens; it only checks the signature and pulls
// the family/role claims it scopes requests by.
type AuthMiddleware struct {
	log       *logger.Logger
	secretKey string
}

func NewAuthMiddleware(log *logger.Logger, secretKey string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, secretKey: secretKey}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(am.secretKey), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		familyID, err := claimUUID(claims, "family_id")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token missing family"})
			return
		}
		userID, err := claimUUID(claims, "sub")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token missing subject"})
			return
		}
		role, _ := claims["role"].(string)
		if role != RoleParent && role != RoleChild {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token missing role"})
			return
		}

		c.Set(CtxFamilyID, familyID)
		c.Set(CtxUserID, userID)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireParent gates the mutating surfaces (goal config, manual
// adjustments) to parent tokens.
func (am *AuthMiddleware) RequireParent() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(CtxRole)
		if role != RoleParent {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "parent role required"})
			return
		}
		c.Next()
	}
}

func FamilyID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(CtxFamilyID)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("claim %q missing", key)
	}
	return uuid.Parse(raw)
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
