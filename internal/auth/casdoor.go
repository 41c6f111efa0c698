// Package auth resolves the external identity into the {id, role} pair the
// services authorize against. Sign-in, sign-up and session issuing all live in
// Casdoor; this package only verifies tokens and keeps a local profile row per
// identity.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/WPCM-2025/consultation-service/internal/config"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

func Init(cfg *config.Config) {
	casdoorsdk.InitConfig(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
}

// Middleware verifies the bearer token and loads the local profile. A fresh
// identity with no profile yet is provisioned as a student; any other role is
// granted later by an admin.
func Middleware(users repositories.UserRepository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		ctx := c.Request.Context()
		user, err := users.GetByID(ctx, claims.User.Id)
		if err != nil && repositories.IsNotFoundError(err) {
			user, err = provision(c, users, &claims.User)
		}
		if err != nil {
			logger.LogError(err, "failed to resolve identity", "subject", claims.User.Id)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unknown identity"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account is deactivated"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

func provision(c *gin.Context, users repositories.UserRepository, identity *casdoorsdk.User) (*models.User, error) {
	ctx := c.Request.Context()

	// The identity may predate this service; match by email before creating.
	if identity.Email != "" {
		if existing, err := users.GetByEmail(ctx, identity.Email); err == nil {
			return existing, nil
		} else if !repositories.IsNotFoundError(err) {
			return nil, err
		}
	}

	user := &models.User{
		ID:       identity.Id,
		FullName: identity.DisplayName,
		Email:    identity.Email,
		Role:     models.RoleStudent,
		Active:   true,
	}
	if identity.Avatar != "" {
		avatar := identity.Avatar
		user.AvatarURL = &avatar
	}
	if user.FullName == "" {
		user.FullName = identity.Name
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequireRoles gates a route group on the resolved role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}

var errNoIdentity = errors.New("no identity in context")

func CurrentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(models.UserRole)
	return role, ok
}

// MustIdentity returns both values or an error for handlers that need them
// together.
func MustIdentity(c *gin.Context) (string, models.UserRole, error) {
	id, ok := CurrentUserID(c)
	if !ok {
		return "", "", errNoIdentity
	}
	role, ok := CurrentRole(c)
	if !ok {
		return "", "", errNoIdentity
	}
	return id, role, nil
}
