package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

// Error is the transport-level error every handler returns. It is rendered
// as {"error": Title, "message": Message}.
type Error struct {
	Status  int
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var titles = map[int]string{
	http.StatusBadRequest:           "Bad Request",
	http.StatusUnauthorized:         "Unauthorized",
	http.StatusForbidden:            "Forbidden",
	http.StatusNotFound:             "Resource Not Found",
	http.StatusMethodNotAllowed:     "Method Not Allowed",
	http.StatusConflict:             "Conflict",
	http.StatusUnsupportedMediaType: "Unsupported Media Type",
	http.StatusTooManyRequests:      "Too Many Requests",
	http.StatusInternalServerError:  "Internal Server Error",
	http.StatusServiceUnavailable:   "Service Unavailable",
}

func Title(status int) string {
	if t, ok := titles[status]; ok {
		return t
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return titles[http.StatusInternalServerError]
}

func New(status int, message string) *Error {
	return &Error{Status: status, Title: Title(status), Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func InsufficientStock(productName string) *Error {
	return BadRequest(fmt.Sprintf("There is not enough stock of %s to complete the order", productName))
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func TokenMissing() *Error {
	return &Error{Status: http.StatusUnauthorized, Title: "Token Missing", Message: "Authorization token is missing"}
}

func TokenExpired() *Error {
	return &Error{Status: http.StatusUnauthorized, Title: "Token Expired", Message: "The token has expired"}
}

func TokenInvalid(err error) *Error {
	return &Error{Status: http.StatusUnauthorized, Title: "Invalid Token", Message: "The token is invalid", Err: err}
}

func InvalidTokenFormat() *Error {
	return &Error{Status: http.StatusBadRequest, Title: "Invalid Token Format", Message: "The token format is invalid. Expected: Bearer <token>"}
}

func TooManyRequests() *Error {
	return New(http.StatusTooManyRequests, "You have exceeded the allowed rate limit. Try again later.")
}

func Database(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Title:   "Database Error",
		Message: "An error occurred while interacting with the database",
		Err:     err,
	}
}

func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Title:   Title(http.StatusInternalServerError),
		Message: "An unexpected error occurred",
		Err:     err,
	}
}

// From converts any handler error into an *Error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return &Error{Status: he.Code, Title: Title(he.Code), Message: msg, Err: he.Internal}
	}

	return Internal(err)
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	ae := From(err)
	if ae.Status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error",
			"status", ae.Status, "title", ae.Title, "error", err)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(ae.Status)
	} else {
		sendErr = c.JSON(ae.Status, Body{Error: ae.Title, Message: ae.Message})
	}
	if sendErr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", sendErr)
	}
}
