package review

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

const reviewColumns = `id, product_id, user_id, seller_id, rating, comment, review_type, created_at, updated_at`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(
		&r.ID, &r.ProductID, &r.UserID, &r.SellerID, &r.Rating,
		&r.Comment, &r.ReviewType, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func fetchReview(ctx context.Context, id string) (Review, error) {
	r, err := scanReview(db.Conn.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return Review{}, fault.NotFound("review not found")
		}
		return Review{}, fault.Unexpected("fetch review: %v", err)
	}
	return r, nil
}

type createReviewRequest struct {
	ProductID  string `json:"product_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	ReviewType string `json:"review_type"`
}

// CreateReview - buyer reviews a product they bought, or its seller.
// Only the buyer of a sold product may review, one review per
// product+reviewer. The insert and the recomputed aggregates commit
// together.
// POST /reviews
func CreateReview(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.ProductID == "" {
		return fault.Respond(c, fault.Invalid("product_id is required"))
	}
	if err := ValidateDraft(req.Rating, req.Comment, req.ReviewType); err != nil {
		return fault.Respond(c, err)
	}

	ctx := c.Request().Context()

	var (
		sellerID string
		status   string
		buyerID  *string
		title    string
	)
	err := db.Conn.QueryRow(ctx,
		`SELECT seller_id, status, buyer_id, title FROM products WHERE id = $1`, req.ProductID,
	).Scan(&sellerID, &status, &buyerID, &title)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.NotFound("product not found"))
		}
		return fault.Respond(c, fault.Unexpected("fetch product: %v", err))
	}

	if status != "sold" {
		return fault.Respond(c, fault.Conflict("product has not been sold yet"))
	}
	if buyerID == nil || *buyerID != caller.ID {
		return fault.Respond(c, fault.Forbidden("only the buyer can review this product"))
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("begin tx: %v", err))
	}
	defer tx.Rollback(ctx)

	r, err := scanReview(tx.QueryRow(ctx,
		`INSERT INTO reviews (id, product_id, user_id, seller_id, rating, comment, review_type)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+reviewColumns,
		uuid.New().String(), req.ProductID, caller.ID, sellerID, req.Rating, req.Comment, req.ReviewType,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fault.Respond(c, fault.Conflict("you have already reviewed this product"))
		}
		return fault.Respond(c, fault.Unexpected("create review: %v", err))
	}

	if err := Recompute(ctx, tx, r.ProductID, r.SellerID); err != nil {
		return fault.Respond(c, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fault.Respond(c, fault.Unexpected("commit: %v", err))
	}

	alerts.Notify(sellerID, "review:new", "You received a review", title, r.ID)
	var sellerEmail string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, sellerID).Scan(&sellerEmail)
	if sellerEmail != "" {
		_ = alerts.EnqueueReviewReceived(r.ID, r.ProductID, sellerID, sellerEmail, r.Rating)
	}

	return c.JSON(http.StatusCreated, r)
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReview - author edits rating or comment; aggregates follow.
// PUT /reviews/:id
func UpdateReview(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	ctx := c.Request().Context()
	r, err := fetchReview(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{AuthorID: r.UserID}, authz.EditReview); err != nil {
		return fault.Respond(c, err)
	}
	if err := ValidateDraft(req.Rating, req.Comment, r.ReviewType); err != nil {
		return fault.Respond(c, err)
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("begin tx: %v", err))
	}
	defer tx.Rollback(ctx)

	updated, err := scanReview(tx.QueryRow(ctx,
		`UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW()
         WHERE id = $1
         RETURNING `+reviewColumns,
		r.ID, req.Rating, req.Comment,
	))
	if err != nil {
		return fault.Respond(c, fault.Unexpected("update review: %v", err))
	}

	if err := Recompute(ctx, tx, updated.ProductID, updated.SellerID); err != nil {
		return fault.Respond(c, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fault.Respond(c, fault.Unexpected("commit: %v", err))
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteReview - author removes their review; aggregates follow, and an
// emptied set resets to {0, 0}.
// DELETE /reviews/:id
func DeleteReview(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := c.Request().Context()
	r, err := fetchReview(ctx, c.Param("id"))
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{AuthorID: r.UserID}, authz.EditReview); err != nil {
		return fault.Respond(c, err)
	}

	if err := removeAndRecompute(ctx, r); err != nil {
		return fault.Respond(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}

// removeAndRecompute deletes a review and refreshes both aggregates in
// one transaction. Shared with moderation.
func removeAndRecompute(ctx context.Context, r Review) error {
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fault.Unexpected("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, r.ID)
	if err != nil {
		return fault.Unexpected("delete review: %v", err)
	}
	if res.RowsAffected() == 0 {
		return fault.NotFound("review not found")
	}

	if err := Recompute(ctx, tx, r.ProductID, r.SellerID); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fault.Unexpected("commit: %v", err)
	}
	return nil
}

// Remove deletes a review by id regardless of author. Used by
// moderation; the caller has already checked privileges.
func Remove(ctx context.Context, id string) error {
	r, err := fetchReview(ctx, id)
	if err != nil {
		return err
	}
	return removeAndRecompute(ctx, r)
}

// GetProductReviews - list product-type reviews for a product
// GET /products/:id/reviews
func GetProductReviews(c echo.Context) error {
	return listReviews(c,
		`SELECT `+reviewColumns+` FROM reviews
         WHERE product_id = $1 AND review_type = 'product' ORDER BY created_at DESC`,
		c.Param("id"))
}

// GetSellerReviews - list seller-type reviews for a seller
// GET /users/:id/reviews
func GetSellerReviews(c echo.Context) error {
	return listReviews(c,
		`SELECT `+reviewColumns+` FROM reviews
         WHERE seller_id = $1 AND review_type = 'seller' ORDER BY created_at DESC`,
		c.Param("id"))
}

func listReviews(c echo.Context, query, id string) error {
	rows, err := db.Conn.Query(c.Request().Context(), query, id)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list reviews: %v", err))
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return fault.Respond(c, fault.Unexpected("scan review: %v", err))
		}
		reviews = append(reviews, r)
	}

	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}
