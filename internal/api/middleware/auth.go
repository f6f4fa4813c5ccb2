// Package middleware holds the HTTP middleware: bearer-token auth on
// top of hertz keyauth, and the admin guard.
package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"talentscope/internal/auth"
	"talentscope/internal/storage/models"
)

// userContextKey is where the authenticated user lands in the request
// context.
const userContextKey = "current_user"

// Auth builds the bearer-token middleware. The token is looked up in
// the Authorization header and resolved to a user through the session
// store; requests without a valid session get a 401.
func Auth(authService *auth.Service) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, token string) (bool, error) {
			user, err := authService.Authenticate(ctx, token)
			if err != nil {
				return false, nil
			}
			c.Set(userContextKey, user)
			return true, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "authentication required"})
		}),
	)
}

// RequireAdmin rejects non-admin users. Must run after Auth.
func RequireAdmin() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(consts.StatusForbidden, utils.H{"error": "admin access required"})
			return
		}
		c.Next(ctx)
	}
}

// CurrentUser returns the authenticated user, or nil outside an
// authenticated request.
func CurrentUser(c *app.RequestContext) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
