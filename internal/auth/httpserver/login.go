package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/internal/auth/service"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}

	token, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "reason", "missing credentials")
			return apperr.BadRequest("Missing required fields: email or password")
		case errors.Is(err, service.ErrInvalidCredentials):
			return apperr.New(http.StatusUnauthorized, "Invalid email or password")
		}
		l.Error("login_error", "status", 500, "reason", "cannot load user", "error", err)
		return apperr.Database(err)
	}

	l.Info("login_success")
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

func Register(e *echo.Echo, h *AuthHTTP) {
	e.POST("/login", h.Login)
}
