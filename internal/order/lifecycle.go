package order

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

func userEmail(ctx context.Context, userID string) string {
	var email string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	return email
}

// ConfirmOrder - seller accepts a pending order (pending -> confirmed).
// PUT /orders/:id/confirm
func ConfirmOrder(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	o, err := fetchOrder(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: o.SellerID, BuyerID: o.BuyerID}, authz.ConfirmOrder); err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(o.Status, StatusConfirmed); err != nil {
		return fault.Respond(c, err)
	}

	updated, err := scanOrder(db.Conn.QueryRow(ctx,
		`UPDATE orders SET status = 'confirmed', updated_at = NOW()
         WHERE id = $1 AND status = 'pending'
         RETURNING `+orderColumns,
		o.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("order state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("confirm order: %v", err))
	}

	alerts.Notify(updated.BuyerID, "order:confirmed", "Your order was confirmed", "", updated.ID)
	if email := userEmail(ctx, updated.BuyerID); email != "" {
		_ = alerts.EnqueueOrderConfirmed(updated.ID, updated.BuyerID, updated.SellerID, email, updated.Amount)
	}

	return c.JSON(http.StatusOK, updated)
}

type shipRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// ShipOrder - seller marks a confirmed order shipped (confirmed -> shipped).
// PUT /orders/:id/ship
func ShipOrder(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req shipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	ctx := c.Request().Context()
	o, err := fetchOrder(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: o.SellerID, BuyerID: o.BuyerID}, authz.ShipOrder); err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(o.Status, StatusShipped); err != nil {
		return fault.Respond(c, err)
	}

	updated, err := scanOrder(db.Conn.QueryRow(ctx,
		`UPDATE orders SET status = 'shipped', tracking_number = NULLIF($2, ''), updated_at = NOW()
         WHERE id = $1 AND status = 'confirmed'
         RETURNING `+orderColumns,
		o.ID, req.TrackingNumber,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("order state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("ship order: %v", err))
	}

	alerts.Notify(updated.BuyerID, "order:shipped", "Your order has shipped", req.TrackingNumber, updated.ID)
	if email := userEmail(ctx, updated.BuyerID); email != "" {
		_ = alerts.EnqueueOrderShipped(updated.ID, updated.BuyerID, updated.SellerID, email, updated.Amount)
	}

	return c.JSON(http.StatusOK, updated)
}

// ConfirmDelivery - buyer confirms receipt (shipped -> completed).
// Releases escrow and marks the product sold in one transaction; the
// order, its payment status and the product move together or not at all.
// PUT /orders/:id/confirm-delivery
func ConfirmDelivery(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	o, err := fetchOrder(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: o.SellerID, BuyerID: o.BuyerID}, authz.ConfirmDelivery); err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(o.Status, StatusCompleted); err != nil {
		return fault.Respond(c, err)
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("begin tx: %v", err))
	}
	defer tx.Rollback(ctx)

	updated, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE orders SET status = 'completed', payment_status = 'released', updated_at = NOW()
         WHERE id = $1 AND status = 'shipped'
         RETURNING `+orderColumns,
		o.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("order state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("complete order: %v", err))
	}

	// The guard tolerates a re-applied completion but refuses a product
	// that has drifted somewhere unexpected.
	res, err := tx.Exec(ctx,
		`UPDATE products SET status = 'sold', updated_at = NOW()
         WHERE id = $1 AND status IN ('pending', 'sold')`,
		updated.ProductID,
	)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("mark product sold: %v", err))
	}
	if res.RowsAffected() == 0 {
		log.Printf("[order] inconsistent state: order %s completed but product %s not pending", updated.ID, updated.ProductID)
		return fault.Respond(c, fault.Conflict("product state diverged from order"))
	}

	if err = tx.Commit(ctx); err != nil {
		return fault.Respond(c, fault.Unexpected("commit: %v", err))
	}

	alerts.Notify(updated.SellerID, "order:completed", "Order completed, escrow released", "", updated.ID)
	if email := userEmail(ctx, updated.SellerID); email != "" {
		_ = alerts.EnqueueOrderCompleted(updated.ID, updated.BuyerID, updated.SellerID, email, updated.Amount)
	}

	return c.JSON(http.StatusOK, updated)
}

// CancelOrder - buyer or seller cancels any non-terminal order.
// Refunds escrow and returns the product to the shelf in one
// transaction.
// PUT /orders/:id/cancel
func CancelOrder(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	o, err := fetchOrder(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: o.SellerID, BuyerID: o.BuyerID}, authz.CancelOrder); err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(o.Status, StatusCancelled); err != nil {
		return fault.Respond(c, err)
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("begin tx: %v", err))
	}
	defer tx.Rollback(ctx)

	updated, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE orders SET status = 'cancelled', payment_status = 'refunded', updated_at = NOW()
         WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
         RETURNING `+orderColumns,
		o.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("order state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("cancel order: %v", err))
	}

	// Put the listing back on the shelf. Re-appliable: an already
	// available product matches too. A suspended product stays with
	// moderation; anything else is divergence worth logging.
	res, err := tx.Exec(ctx,
		`UPDATE products SET status = 'available', buyer_id = NULL, updated_at = NOW()
         WHERE id = $1 AND status IN ('pending', 'available')`,
		updated.ProductID,
	)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("restore product: %v", err))
	}
	if res.RowsAffected() == 0 {
		var pStatus string
		_ = tx.QueryRow(ctx, `SELECT status FROM products WHERE id = $1`, updated.ProductID).Scan(&pStatus)
		if pStatus != "suspended" {
			log.Printf("[order] inconsistent state: order %s cancelled but product %s is %s", updated.ID, updated.ProductID, pStatus)
			return fault.Respond(c, fault.Conflict("product state diverged from order"))
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fault.Respond(c, fault.Unexpected("commit: %v", err))
	}

	// Tell the party that did not cancel.
	other := updated.SellerID
	if caller.ID == updated.SellerID {
		other = updated.BuyerID
	}
	alerts.Notify(other, "order:cancelled", "Order cancelled", "", updated.ID)
	if email := userEmail(ctx, other); email != "" {
		_ = alerts.EnqueueOrderCancelled(updated.ID, updated.BuyerID, updated.SellerID, email, updated.Amount)
	}

	return c.JSON(http.StatusOK, updated)
}
