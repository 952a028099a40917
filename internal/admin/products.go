package admin

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

// ListProducts - every listing regardless of status, suspended included
// GET /admin/products
func ListProducts(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, seller_id, title, price, category, status, views, created_at
         FROM products ORDER BY created_at DESC`)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list products: %v", err))
	}
	defer rows.Close()

	type row struct {
		ID        string    `json:"id"`
		SellerID  string    `json:"seller_id"`
		Title     string    `json:"title"`
		Price     int64     `json:"price"`
		Category  string    `json:"category"`
		Status    string    `json:"status"`
		Views     int64     `json:"views"`
		CreatedAt time.Time `json:"created_at"`
	}

	products := []row{}
	for rows.Next() {
		var p row
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Title, &p.Price, &p.Category, &p.Status, &p.Views, &p.CreatedAt); err != nil {
			return fault.Respond(c, fault.Unexpected("scan product: %v", err))
		}
		products = append(products, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// SuspendProduct - pulls a listing from circulation, from any state.
// The prior status is remembered so restore can put it back; a pending
// buyer claim stays on the row for the same reason.
// POST /admin/products/:id/suspend
func SuspendProduct(c echo.Context) error {
	productID := c.Param("id")
	ctx := c.Request().Context()

	var sellerID, title string
	err := db.Conn.QueryRow(ctx,
		`UPDATE products SET status = 'suspended', suspended_from = status, updated_at = NOW()
         WHERE id = $1 AND status <> 'suspended'
         RETURNING seller_id, title`, productID,
	).Scan(&sellerID, &title)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			_ = db.Conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
			if !exists {
				return fault.Respond(c, fault.NotFound("product not found"))
			}
			return fault.Respond(c, fault.Conflict("product is already suspended"))
		}
		return fault.Respond(c, fault.Unexpected("suspend product: %v", err))
	}

	alerts.Notify(sellerID, "listing:suspended", "Your listing was suspended", title, productID)
	return c.JSON(http.StatusOK, echo.Map{"message": "product suspended", "product_id": productID})
}

// RestoreProduct - returns a suspended listing to the state it held when
// moderation pulled it. A sold listing stays sold with its buyer, a
// pending claim survives; only a restore to available clears the buyer.
// POST /admin/products/:id/restore
func RestoreProduct(c echo.Context) error {
	productID := c.Param("id")
	ctx := c.Request().Context()

	var sellerID, title, status string
	err := db.Conn.QueryRow(ctx,
		`UPDATE products
         SET status = COALESCE(suspended_from, 'available'),
             buyer_id = CASE WHEN COALESCE(suspended_from, 'available') = 'available'
                             THEN NULL ELSE buyer_id END,
             suspended_from = NULL,
             updated_at = NOW()
         WHERE id = $1 AND status = 'suspended'
         RETURNING seller_id, title, status`, productID,
	).Scan(&sellerID, &title, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			_ = db.Conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
			if !exists {
				return fault.Respond(c, fault.NotFound("product not found"))
			}
			return fault.Respond(c, fault.Conflict("product is not suspended"))
		}
		return fault.Respond(c, fault.Unexpected("restore product: %v", err))
	}

	alerts.Notify(sellerID, "listing:restored", "Your listing is live again", title, productID)
	return c.JSON(http.StatusOK, echo.Map{"message": "product restored", "product_id": productID, "status": status})
}
