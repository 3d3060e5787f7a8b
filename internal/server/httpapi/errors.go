package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeev/todolist/internal/common"
	"github.com/avdeev/todolist/internal/server/validation"
)

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors []validation.FieldError `json:"errors"`
	Values map[string]string       `json:"values,omitempty"`
}

// writeError maps service errors onto HTTP responses. A foreign item and a
// missing item both come back as 404, so a caller probing ids cannot tell
// which of the two it hit. Anything unexpected is logged and reduced to a
// generic 500.
func (s *Server) writeError(c echo.Context, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, validationBody{Errors: verrs})
	case errors.Is(err, common.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorBody{Error: "email is already registered"})
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid email or password"})
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenSignatureInvalid),
		errors.Is(err, common.ErrTokenMalformed):
		return s.unauthenticated(c)
	case errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	default:
		s.logger.Error(c.Request().Context(), "request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
