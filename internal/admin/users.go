package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

type adminUser struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListUsers - full account list for moderation
// GET /admin/users
func ListUsers(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, name, email, role, is_active, rating_avg, rating_count, created_at
         FROM users ORDER BY created_at DESC`)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list users: %v", err))
	}
	defer rows.Close()

	users := []adminUser{}
	for rows.Next() {
		var u adminUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.RatingAvg, &u.RatingCount, &u.CreatedAt); err != nil {
			return fault.Respond(c, fault.Unexpected("scan user: %v", err))
		}
		users = append(users, u)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// SuspendUser - blocks login for an account
// POST /admin/users/:id/suspend
func SuspendUser(c echo.Context) error {
	userID := c.Param("id")
	res, err := db.Conn.Exec(c.Request().Context(),
		`UPDATE users SET is_active = FALSE WHERE id = $1`, userID)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("suspend user: %v", err))
	}
	if res.RowsAffected() == 0 {
		return fault.Respond(c, fault.NotFound("user not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user suspended", "user_id": userID})
}

// ActivateUser - lifts a suspension
// POST /admin/users/:id/activate
func ActivateUser(c echo.Context) error {
	userID := c.Param("id")
	res, err := db.Conn.Exec(c.Request().Context(),
		`UPDATE users SET is_active = TRUE WHERE id = $1`, userID)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("activate user: %v", err))
	}
	if res.RowsAffected() == 0 {
		return fault.Respond(c, fault.NotFound("user not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user activated", "user_id": userID})
}
