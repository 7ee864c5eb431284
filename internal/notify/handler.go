package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

const (
	Subject          = "New message from your portfolio"
	MsgMissingFields = "Missing required fields: name, email, message"
)

type SendEmailRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactHTTP relays contact form messages to the shop mailbox. A nil Mailer
// means SMTP is not configured.
type ContactHTTP struct {
	Mailer  Mailer
	To      string
	Timeout time.Duration
}

func FormatBody(name, email, message string) string {
	return fmt.Sprintf("Message from: %s <%s>\n\n%s", name, email, message)
}

func (h *ContactHTTP) SendEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notify.send_email")

	var req SendEmailRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("send_email_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || strings.TrimSpace(req.Message) == "" {
		l.Warn("send_email_error", "status", 400, "reason", "missing fields")
		return apperr.BadRequest(MsgMissingFields)
	}

	if h.Mailer == nil {
		l.Warn("send_email_error", "status", 503, "reason", "smtp not configured")
		return apperr.New(http.StatusServiceUnavailable, "Email delivery is not configured")
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := h.Mailer.Send(sendCtx, Message{
		To:      h.To,
		ReplyTo: req.Email,
		Subject: Subject,
		Body:    FormatBody(req.Name, req.Email, req.Message),
	})
	if err != nil {
		l.Error("send_email_error", "status", 500, "reason", "smtp failure", "error", err)
		return apperr.Internal(err)
	}

	l.Info("send_email_success", "sender", req.Email)
	return c.JSON(http.StatusOK, map[string]string{"message": "message sent"})
}

func Register(e *echo.Echo, h *ContactHTTP, auth *middleware.BearerMiddleware) {
	e.POST("/send_email", h.SendEmail, auth.RequireAuth)
}
