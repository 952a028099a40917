package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/db"
)

// Stats - marketplace dashboard counters
// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var users, products, orders, reviews, openOrders int

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&products)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&reviews)
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status NOT IN ('completed', 'cancelled')`).Scan(&openOrders)

	return c.JSON(http.StatusOK, echo.Map{
		"users":       users,
		"products":    products,
		"orders":      orders,
		"reviews":     reviews,
		"open_orders": openOrders,
	})
}
