package fault

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

var statusByKind = map[Kind]int{
	KindNotFound:   http.StatusNotFound,
	KindForbidden:  http.StatusForbidden,
	KindConflict:   http.StatusConflict,
	KindValidation: http.StatusBadRequest,
	KindUnexpected: http.StatusInternalServerError,
}

// Status maps a classified error to its HTTP status code.
func Status(err error) int {
	if s, ok := statusByKind[KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Respond writes the JSON failure body for err. Unexpected errors are
// logged server-side and replaced with a generic message so driver
// details never leak to clients.
func Respond(c echo.Context, err error) error {
	if KindOf(err) == KindUnexpected {
		log.Printf("[fault] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(Status(err), echo.Map{"message": err.Error()})
}
