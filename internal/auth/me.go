package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/db"
)

// Me returns the currently authenticated user's profile
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var (
		id, name, email, role string
		ratingAvg             float64
		ratingCount           int
	)
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, name, email, role, rating_avg, rating_count FROM users WHERE id = $1`, userID).
		Scan(&id, &name, &email, &role, &ratingAvg, &ratingCount)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":    id,
		"name":  name,
		"email": email,
		"role":  role,
		"ratings": echo.Map{
			"average": ratingAvg,
			"count":   ratingCount,
		},
	})
}
