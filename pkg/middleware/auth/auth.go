package authmw

import (
	"errors"
	"net/http"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CtxClaims = "user"
	CtxUserID = "user_id"
	CtxRole   = "role"
)

const RoleAdmin = "admin"

// RequireAuth accepts "Authorization: Bearer <jwt>" signed with secret and
// stores the numeric user id and the role on the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  CtxClaims,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := tokens.AccessClaimsFromToken(auth, secret)
			if err != nil {
				return nil, err
			}
			if _, err := strconv.ParseUint(claims.Subject, 10, 64); err != nil {
				return nil, tokens.ErrInvalidToken
			}
			return claims, nil
		},
		SuccessHandler: func(c echo.Context) {
			claims := c.Get(CtxClaims).(*tokens.AccessClaims)
			id, _ := strconv.ParseUint(claims.Subject, 10, 64)
			c.Set(CtxUserID, uint(id))
			c.Set(CtxRole, claims.Role)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token").SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token").SetInternal(err)
		},
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r, _ := c.Get(CtxRole).(string); r != role {
				return echo.NewHTTPError(http.StatusForbidden, role+" access required")
			}
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(RoleAdmin)
}

// Identity returns what RequireAuth stored; ok is false on unauthenticated routes.
func Identity(c echo.Context) (userID uint, role string, ok bool) {
	userID, ok = c.Get(CtxUserID).(uint)
	if !ok {
		return 0, "", false
	}
	role, _ = c.Get(CtxRole).(string)
	return userID, role, true
}
