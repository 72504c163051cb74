package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	who, err := caller(c)
	if err != nil {
		return err
	}
	users, err := h.Svc.List(ctx, who)
	if err != nil {
		return serviceError(l, "list_users_failed", err, "cannot list users")
	}

	out := make([]transport.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, transport.NewUserDTO(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "get_user_failed", "id")
	if err != nil {
		return err
	}

	user, err := h.Svc.Get(ctx, who, id)
	if err != nil {
		return serviceError(l, "get_user_failed", err, "cannot get user")
	}
	return c.JSON(http.StatusOK, transport.NewUserDTO(user))
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "update_user_failed", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateUserRequest
	if err := bindAndValidate(c, l, "update_user_failed", &req); err != nil {
		return err
	}

	user, err := h.Svc.Update(ctx, who, id, req)
	if err != nil {
		return serviceError(l, "update_user_failed", err, "cannot update user")
	}

	l.Info("update_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.NewUserDTO(user))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "delete_user_failed", "id")
	if err != nil {
		return err
	}

	user, err := h.Svc.Delete(ctx, who, id)
	if err != nil {
		return serviceError(l, "delete_user_failed", err, "cannot delete user")
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "user deleted",
		"user":    transport.NewUserDTO(user),
	})
}
