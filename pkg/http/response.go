package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the uniform envelope for every endpoint. The HTTP status
// is mirrored in the body so clients behind proxies that rewrite codes can
// still see the original.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one failed field check.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func write(c echo.Context, status int, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return write(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, data interface{}) error {
	return write(c, http.StatusBadRequest, data)
}

func NotFoundResponse(c echo.Context, data interface{}) error {
	return write(c, http.StatusNotFound, data)
}

func InternalServerErrorResponse(c echo.Context) error {
	return write(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes an AppError with its carried status; anything
// else becomes an opaque 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return write(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
