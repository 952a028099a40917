package order

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

const orderColumns = `id, product_id, buyer_id, seller_id, amount, shipping_address,
        tracking_number, notes, status, payment_status, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.ProductID, &o.BuyerID, &o.SellerID, &o.Amount, &o.ShippingAddress,
		&o.TrackingNumber, &o.Notes, &o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func fetchOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(db.Conn.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return Order{}, fault.NotFound("order not found")
		}
		return Order{}, fault.Unexpected("fetch order: %v", err)
	}
	return o, nil
}

type createOrderRequest struct {
	ProductID       string `json:"product_id"`
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// CreateOrder - buyer commits to a product through escrow.
// The order is born escrowed and the product moves to pending in the
// same transaction; the status guard on the product update keeps two
// concurrent buyers from both claiming it.
// POST /orders
func CreateOrder(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.ProductID == "" {
		return fault.Respond(c, fault.Invalid("product_id is required"))
	}
	if _, err := uuid.Parse(req.ProductID); err != nil {
		return fault.Respond(c, fault.Invalid("invalid product_id format"))
	}
	if req.ShippingAddress == "" {
		return fault.Respond(c, fault.Invalid("shipping_address is required"))
	}

	ctx := c.Request().Context()

	var (
		sellerID string
		price    int64
		title    string
		status   string
	)
	err := db.Conn.QueryRow(ctx,
		`SELECT seller_id, price, title, status FROM products WHERE id = $1`, req.ProductID,
	).Scan(&sellerID, &price, &title, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.NotFound("product not found"))
		}
		return fault.Respond(c, fault.Unexpected("fetch product: %v", err))
	}

	if caller.ID == sellerID {
		return fault.Respond(c, fault.Invalid("you cannot order your own listing"))
	}
	if status != "available" {
		return fault.Respond(c, fault.Conflict("product is %s, not available", status))
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("begin tx: %v", err))
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx,
		`UPDATE products SET status = 'pending', buyer_id = $2, updated_at = NOW()
         WHERE id = $1 AND status = 'available'`,
		req.ProductID, caller.ID,
	)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("reserve product: %v", err))
	}
	if res.RowsAffected() == 0 {
		return fault.Respond(c, fault.Conflict("product is no longer available"))
	}

	// Amount is a snapshot of the price at this moment, never re-read.
	orderID := uuid.New().String()
	o, err := scanOrder(tx.QueryRow(ctx,
		`INSERT INTO orders (id, product_id, buyer_id, seller_id, amount,
                             shipping_address, notes, status, payment_status)
         VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', 'escrowed')
         RETURNING `+orderColumns,
		orderID, req.ProductID, caller.ID, sellerID, price, req.ShippingAddress, req.Notes,
	))
	if err != nil {
		return fault.Respond(c, fault.Unexpected("create order: %v", err))
	}

	if err = tx.Commit(ctx); err != nil {
		return fault.Respond(c, fault.Unexpected("commit: %v", err))
	}

	alerts.Notify(sellerID, "order:new", "New order on your listing", title, o.ID)

	return c.JSON(http.StatusCreated, o)
}

// GetUserOrders - fetch all orders for a user (as buyer or seller)
// GET /orders
func GetUserOrders(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT `+orderColumns+` FROM orders
         WHERE buyer_id = $1 OR seller_id = $1 ORDER BY created_at DESC`, caller.ID)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list orders: %v", err))
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return fault.Respond(c, fault.Unexpected("scan order: %v", err))
		}
		orders = append(orders, o)
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetOrder - fetch one order, participants only
// GET /orders/:id
func GetOrder(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	o, err := fetchOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if caller.ID != o.BuyerID && caller.ID != o.SellerID && !caller.IsAdmin() {
		return fault.Respond(c, fault.Forbidden("not a participant in this order"))
	}

	return c.JSON(http.StatusOK, o)
}
