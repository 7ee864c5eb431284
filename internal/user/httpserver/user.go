package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/internal/user/service"
	"github.com/Skotchmaster/shop_orders/internal/user/transport"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/events"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type UserHTTP struct {
	Svc    *service.UserService
	Events events.Publisher
}

func (h *UserHTTP) publish(ctx context.Context, id uint, typ string, payload map[string]any) {
	events.Emit(ctx, h.Events, events.TopicUsers, strconv.FormatUint(uint64(id), 10), typ, payload)
}

func mapUserError(err error, notFound string) *apperr.Error {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return apperr.BadRequest("Missing required fields: name, email, or password")
	case errors.Is(err, service.ErrInvalidRole):
		return apperr.BadRequest("Invalid role, valid roles are: buyer, seller, admin")
	case errors.Is(err, service.ErrEmailTaken):
		return apperr.BadRequest("Email already registered")
	case errors.Is(err, service.ErrNotFound):
		return apperr.NotFound(notFound)
	default:
		return apperr.Database(err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}

	user, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		ae := mapUserError(err, "User not found")
		l.Warn("create_user_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	h.publish(ctx, user.ID, "user_created", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	l.Info("create_user_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User created",
		"user":    user.ID,
	})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_user_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("User id must be an integer")
	}

	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		ae := mapUserError(err, "User not found")
		l.Warn("get_user_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*user))
}

func (h *UserHTTP) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		ae := mapUserError(err, "No users found")
		l.Warn("get_users_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.NewUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.patch_user")

	id, err := parseID(c)
	if err != nil {
		l.Warn("patch_user_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("User id must be an integer")
	}

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_user_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}

	user, err := h.Svc.PatchUser(ctx, id, req)
	if err != nil {
		ae := mapUserError(err, "User not found")
		l.Warn("patch_user_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	h.publish(ctx, user.ID, "user_updated", map[string]any{"user_id": user.ID, "role": user.Role})
	l.Info("patch_user_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    transport.NewUserResponse(*user),
	})
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	id, err := parseID(c)
	if err != nil {
		l.Warn("delete_user_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("User id must be an integer")
	}

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		ae := mapUserError(err, "User not found")
		l.Warn("delete_user_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	h.publish(ctx, id, "user_deleted", map[string]any{"user_id": id})
	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "User delete successfully"})
}
