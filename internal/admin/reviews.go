package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
	"github.com/tradepost-dev/tradepost/internal/review"
)

// ListReviews - every review, for moderation
// GET /admin/reviews
func ListReviews(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, product_id, user_id, seller_id, rating, comment, review_type, created_at
         FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list reviews: %v", err))
	}
	defer rows.Close()

	type row struct {
		ID         string    `json:"id"`
		ProductID  string    `json:"product_id"`
		UserID     string    `json:"user_id"`
		SellerID   string    `json:"seller_id"`
		Rating     int       `json:"rating"`
		Comment    string    `json:"comment"`
		ReviewType string    `json:"review_type"`
		CreatedAt  time.Time `json:"created_at"`
	}

	reviews := []row{}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.SellerID, &r.Rating, &r.Comment, &r.ReviewType, &r.CreatedAt); err != nil {
			return fault.Respond(c, fault.Unexpected("scan review: %v", err))
		}
		reviews = append(reviews, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}

// DeleteReview - remove an abusive review. The affected product and
// seller aggregates are recomputed in the same transaction.
// DELETE /admin/reviews/:id
func DeleteReview(c echo.Context) error {
	if err := review.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return fault.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}
