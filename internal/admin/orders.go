package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

// ListOrders - every order in the system, newest first
// GET /admin/orders
func ListOrders(c echo.Context) error {
	query := `SELECT id, product_id, buyer_id, seller_id, amount, status, payment_status, created_at
              FROM orders`
	args := []any{}
	if status := c.QueryParam("status"); status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Conn.Query(c.Request().Context(), query, args...)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list orders: %v", err))
	}
	defer rows.Close()

	type row struct {
		ID            string    `json:"id"`
		ProductID     string    `json:"product_id"`
		BuyerID       string    `json:"buyer_id"`
		SellerID      string    `json:"seller_id"`
		Amount        int64     `json:"amount"`
		Status        string    `json:"status"`
		PaymentStatus string    `json:"payment_status"`
		CreatedAt     time.Time `json:"created_at"`
	}

	orders := []row{}
	for rows.Next() {
		var o row
		if err := rows.Scan(&o.ID, &o.ProductID, &o.BuyerID, &o.SellerID, &o.Amount, &o.Status, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return fault.Respond(c, fault.Unexpected("scan order: %v", err))
		}
		orders = append(orders, o)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}
