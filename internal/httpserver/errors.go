package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"

	"github.com/Skotchmaster/storefront/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

// ErrorHandler renders every error as {"error": msg}. Errors that are not
// *echo.HTTPError become a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = strings.ToLower(http.StatusText(status))
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Error: msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "email":
		return fmt.Errorf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

// bindAndValidate answers 400 with the first problem found in the body.
func bindAndValidate(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// serviceError maps service sentinels to HTTP errors and logs at the matching level.
// fallback is the 500 message.
func serviceError(l *slog.Logger, event string, err error, fallback string) error {
	status, msg := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		msg = strings.TrimSuffix(err.Error(), ": "+service.ErrValidation.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, notFoundMessage(err)
	}

	if status >= 500 {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func notFoundMessage(err error) string {
	for _, s := range []error{
		service.ErrCartItemNotFound,
		service.ErrCartNotFound,
		service.ErrOrderNotFound,
		service.ErrProductNotFound,
		service.ErrUserNotFound,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return service.ErrNotFound.Error()
}

func parseID(c echo.Context, l *slog.Logger, event, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		l.Warn(event, "status", 400, "reason", param+" is not a positive integer", "error", err)
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return uint(id), nil
}

// caller reads the identity stored by the auth gate.
func caller(c echo.Context) (service.Caller, error) {
	id, role, ok := authmw.Identity(c)
	if !ok {
		return service.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return service.Caller{UserID: id, Role: role}, nil
}
