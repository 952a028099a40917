package order

import (
	"time"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

// Order statuses. Delivered and disputed are declared for the schema
// but no buyer/seller action reaches them yet.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusDisputed  = "disputed"
)

// Payment custody simulation, tracked independently of status.
const (
	PaymentPending  = "pending"
	PaymentEscrowed = "escrowed"
	PaymentReleased = "released"
	PaymentRefunded = "refunded"
)

// allowedTransitions defines the valid order state transitions.
// Cancelled is reachable from every non-terminal state.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusCompleted, StatusCancelled},
	StatusDelivered: {StatusCompleted, StatusCancelled},
	StatusDisputed:  {StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fault.Conflict("order is %s, cannot move to %s", from, to)
	}
	return nil
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// PaymentStatusFor returns the payment status an order must carry once
// it enters the given status, or "" when the transition leaves custody
// untouched. Released pairs with completed and refunded with cancelled;
// nothing else may set them.
func PaymentStatusFor(status string) string {
	switch status {
	case StatusCompleted:
		return PaymentReleased
	case StatusCancelled:
		return PaymentRefunded
	}
	return ""
}

// Order is the escrow record for one product sale. Amount is a
// snapshot of the product price at creation and is never re-read.
type Order struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	BuyerID         string    `json:"buyer_id"`
	SellerID        string    `json:"seller_id"`
	Amount          int64     `json:"amount"`
	ShippingAddress string    `json:"shipping_address"`
	TrackingNumber  *string   `json:"tracking_number"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
