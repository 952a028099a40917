package listing

import (
	"time"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

// Product statuses. Suspended is an admin side-channel and is never
// reachable through the buyer/seller flow.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusSold      = "sold"
	StatusSuspended = "suspended"
)

// allowedTransitions defines the valid listing state transitions.
// The key is the current status, the value the set of valid targets.
// A restore leaves suspended for whichever state the listing held when
// moderation pulled it.
var allowedTransitions = map[string][]string{
	StatusAvailable: {StatusPending, StatusSuspended},
	StatusPending:   {StatusSold, StatusAvailable, StatusSuspended},
	StatusSold:      {StatusSuspended},
	StatusSuspended: {StatusAvailable, StatusPending, StatusSold},
}

// CanTransition checks if a status change is allowed.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a Conflict when the change is not allowed
// from the current status.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fault.Conflict("listing is %s, cannot move to %s", from, to)
	}
	return nil
}

var Categories = map[string]bool{
	"electronics": true,
	"fashion":     true,
	"home":        true,
	"sports":      true,
	"books":       true,
	"toys":        true,
	"vehicles":    true,
	"other":       true,
}

var Conditions = map[string]bool{
	"new":      true,
	"like_new": true,
	"good":     true,
	"fair":     true,
	"poor":     true,
}

// Ratings is the derived aggregate recomputed from the review set.
type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Product is a listing as exposed to buyers. BuyerID is set exactly
// while the listing is pending or sold.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	BuyerID     *string   `json:"buyer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Images      []string  `json:"images"`
	Location    string    `json:"location"`
	Views       int       `json:"views"`
	Ratings     Ratings   `json:"ratings"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateDraft checks the user-supplied fields of a new or edited
// listing before it touches the database.
func ValidateDraft(title string, price int64, category, condition string, images []string) error {
	if title == "" {
		return fault.Invalid("title is required")
	}
	if price < 0 {
		return fault.Invalid("price must not be negative")
	}
	if !Categories[category] {
		return fault.Invalid("unknown category %q", category)
	}
	if !Conditions[condition] {
		return fault.Invalid("unknown condition %q", condition)
	}
	if len(images) == 0 {
		return fault.Invalid("at least one image is required")
	}
	return nil
}
