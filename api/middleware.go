package api

import (
	"net/http"
	"strings"

	"learnhub/auth"
	"learnhub/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextUserKey = "user"

// AuthenticatedUser ist der Nutzer hinter dem Bearer-Token.
type AuthenticatedUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// AuthMiddleware verlangt "Authorization: Bearer <jwt>" und prüft, dass der Nutzer noch existiert.
func AuthMiddleware(tokens *auth.TokenIssuer, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := users.Find(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		c.Set(contextUserKey, AuthenticatedUser{ID: user.ID, Username: user.Username, Email: user.Email})
		c.Next()
	}
}

func currentUser(c *gin.Context) AuthenticatedUser {
	return c.MustGet(contextUserKey).(AuthenticatedUser)
}

// paramUUID liest einen Pfadparameter als UUID und antwortet bei Fehlern mit 400.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
