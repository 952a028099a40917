package review

import (
	"time"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

const (
	TypeProduct = "product"
	TypeSeller  = "seller"
)

// Review rates either the product or the seller behind a completed
// sale. SellerID is denormalized from the product at creation time.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	SellerID   string    `json:"seller_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewType string    `json:"review_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fault.Invalid("rating must be between 1 and 5")
	}
	return nil
}

func ValidateDraft(rating int, comment, reviewType string) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	if comment == "" {
		return fault.Invalid("comment is required")
	}
	if len(comment) > 500 {
		return fault.Invalid("comment must be at most 500 characters")
	}
	if reviewType != TypeProduct && reviewType != TypeSeller {
		return fault.Invalid("review_type must be product or seller")
	}
	return nil
}
