package listing

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

// Purchase - buyer claims an available listing (available -> pending).
// POST /products/:id/purchase
func Purchase(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	productID := c.Param("id")
	ctx := c.Request().Context()

	p, err := fetchProduct(ctx, productID)
	if err != nil {
		return fault.Respond(c, err)
	}
	if !authz.Can(caller, authz.Resource{SellerID: p.SellerID}, authz.PurchaseListing) {
		return fault.Respond(c, fault.Invalid("you cannot purchase your own listing"))
	}
	if err := ValidateTransition(p.Status, StatusPending); err != nil {
		return fault.Respond(c, err)
	}

	// The status guard makes the claim atomic: of two concurrent buyers
	// only one UPDATE can match.
	updated, err := scanProduct(db.Conn.QueryRow(ctx,
		`UPDATE products SET status = 'pending', buyer_id = $2, updated_at = NOW()
         WHERE id = $1 AND status = 'available'
         RETURNING `+productColumns,
		productID, caller.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("listing is no longer available"))
		}
		return fault.Respond(c, fault.Unexpected("purchase listing: %v", err))
	}

	alerts.Notify(updated.SellerID, "listing:pending", "Your listing has a buyer", updated.Title, updated.ID)

	return c.JSON(http.StatusOK, updated)
}

// ConfirmPurchase - the pending buyer finalizes the sale (pending -> sold).
// POST /products/:id/confirm-purchase
func ConfirmPurchase(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	productID := c.Param("id")
	ctx := c.Request().Context()

	p, err := fetchProduct(ctx, productID)
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(p.Status, StatusSold); err != nil {
		return fault.Respond(c, err)
	}

	res := authz.Resource{SellerID: p.SellerID}
	if p.BuyerID != nil {
		res.BuyerID = *p.BuyerID
	}
	if err := authz.Require(caller, res, authz.ConfirmPurchase); err != nil {
		return fault.Respond(c, err)
	}

	updated, err := scanProduct(db.Conn.QueryRow(ctx,
		`UPDATE products SET status = 'sold', updated_at = NOW()
         WHERE id = $1 AND status = 'pending' AND buyer_id = $2
         RETURNING `+productColumns,
		productID, res.BuyerID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("listing state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("confirm purchase: %v", err))
	}

	alerts.Notify(updated.SellerID, "listing:sold", "Your listing sold", updated.Title, updated.ID)

	return c.JSON(http.StatusOK, updated)
}

// CancelPurchase - buyer or seller backs out (pending -> available).
// POST /products/:id/cancel-purchase
func CancelPurchase(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	productID := c.Param("id")
	ctx := c.Request().Context()

	p, err := fetchProduct(ctx, productID)
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateTransition(p.Status, StatusAvailable); err != nil {
		return fault.Respond(c, err)
	}

	res := authz.Resource{SellerID: p.SellerID}
	if p.BuyerID != nil {
		res.BuyerID = *p.BuyerID
	}
	if err := authz.Require(caller, res, authz.CancelPurchase); err != nil {
		return fault.Respond(c, err)
	}

	updated, err := scanProduct(db.Conn.QueryRow(ctx,
		`UPDATE products SET status = 'available', buyer_id = NULL, updated_at = NOW()
         WHERE id = $1 AND status = 'pending'
         RETURNING `+productColumns,
		productID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.Conflict("listing state changed, please retry"))
		}
		return fault.Respond(c, fault.Unexpected("cancel purchase: %v", err))
	}

	// Tell the party that did not cancel.
	if caller.ID == updated.SellerID && res.BuyerID != "" {
		alerts.Notify(res.BuyerID, "listing:cancelled", "Purchase cancelled by seller", updated.Title, updated.ID)
	} else {
		alerts.Notify(updated.SellerID, "listing:cancelled", "Purchase cancelled by buyer", updated.Title, updated.ID)
	}

	return c.JSON(http.StatusOK, updated)
}
