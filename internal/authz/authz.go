package authz

import "github.com/tradepost-dev/tradepost/internal/fault"

// Capability names an action a caller may attempt against a resource.
type Capability int

const (
	ManageListing Capability = iota + 1 // edit or delete a product
	PurchaseListing
	ConfirmPurchase
	CancelPurchase
	ConfirmOrder
	ShipOrder
	ConfirmDelivery
	CancelOrder
	EditReview
	Moderate
)

func (c Capability) String() string {
	switch c {
	case ManageListing:
		return "manage_listing"
	case PurchaseListing:
		return "purchase_listing"
	case ConfirmPurchase:
		return "confirm_purchase"
	case CancelPurchase:
		return "cancel_purchase"
	case ConfirmOrder:
		return "confirm_order"
	case ShipOrder:
		return "ship_order"
	case ConfirmDelivery:
		return "confirm_delivery"
	case CancelOrder:
		return "cancel_order"
	case EditReview:
		return "edit_review"
	case Moderate:
		return "moderate"
	}
	return "unknown"
}

// Caller is the authenticated principal as established by the JWT
// middleware. The core trusts these fields as already verified.
type Caller struct {
	ID   string
	Role string
}

func (c Caller) IsAdmin() bool { return c.Role == "admin" }

// Resource carries the ownership fields relevant to a capability check.
// Fields that do not apply to the resource at hand stay empty.
type Resource struct {
	SellerID string
	BuyerID  string
	AuthorID string
}

// Can decides whether caller holds cap against res. Admins pass every
// check; moderation is the only capability they hold exclusively.
func Can(caller Caller, res Resource, cap Capability) bool {
	if caller.IsAdmin() {
		return true
	}
	switch cap {
	case ManageListing:
		return caller.ID == res.SellerID
	case PurchaseListing:
		// a seller can never buy their own listing
		return caller.ID != "" && caller.ID != res.SellerID
	case ConfirmPurchase, ConfirmDelivery:
		return caller.ID == res.BuyerID
	case ConfirmOrder, ShipOrder:
		return caller.ID == res.SellerID
	case CancelPurchase, CancelOrder:
		return caller.ID == res.BuyerID || caller.ID == res.SellerID
	case EditReview:
		return caller.ID == res.AuthorID
	case Moderate:
		return false
	}
	return false
}

// Require returns a Forbidden fault when the capability check fails.
func Require(caller Caller, res Resource, cap Capability) error {
	if !Can(caller, res, cap) {
		return fault.Forbidden("not allowed to %s", cap)
	}
	return nil
}
