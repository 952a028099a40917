package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan_OwnershipChecks(t *testing.T) {
	seller := Caller{ID: "seller-1", Role: "user"}
	buyer := Caller{ID: "buyer-1", Role: "user"}
	stranger := Caller{ID: "stranger-1", Role: "user"}

	res := Resource{SellerID: "seller-1", BuyerID: "buyer-1"}

	tests := []struct {
		name   string
		caller Caller
		cap    Capability
		want   bool
	}{
		{"seller manages own listing", seller, ManageListing, true},
		{"buyer cannot manage listing", buyer, ManageListing, false},
		{"buyer can purchase", buyer, PurchaseListing, true},
		{"stranger can purchase", stranger, PurchaseListing, true},
		{"seller cannot purchase own listing", seller, PurchaseListing, false},
		{"buyer confirms purchase", buyer, ConfirmPurchase, true},
		{"seller cannot confirm purchase", seller, ConfirmPurchase, false},
		{"stranger cannot confirm purchase", stranger, ConfirmPurchase, false},
		{"seller confirms order", seller, ConfirmOrder, true},
		{"buyer cannot confirm order", buyer, ConfirmOrder, false},
		{"seller ships", seller, ShipOrder, true},
		{"buyer cannot ship", buyer, ShipOrder, false},
		{"buyer confirms delivery", buyer, ConfirmDelivery, true},
		{"seller cannot confirm delivery", seller, ConfirmDelivery, false},
		{"buyer cancels", buyer, CancelOrder, true},
		{"seller cancels", seller, CancelOrder, true},
		{"stranger cannot cancel", stranger, CancelOrder, false},
		{"regular user cannot moderate", buyer, Moderate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.caller, res, tt.cap))
		})
	}
}

func TestCan_AdminPassesEverything(t *testing.T) {
	admin := Caller{ID: "admin-1", Role: "admin"}
	res := Resource{SellerID: "seller-1", BuyerID: "buyer-1", AuthorID: "author-1"}

	for _, cap := range []Capability{
		ManageListing, PurchaseListing, ConfirmPurchase, CancelPurchase,
		ConfirmOrder, ShipOrder, ConfirmDelivery, CancelOrder, EditReview, Moderate,
	} {
		assert.True(t, Can(admin, res, cap), "admin should hold %s", cap)
	}
}

func TestCan_ReviewAuthor(t *testing.T) {
	author := Caller{ID: "author-1", Role: "user"}
	other := Caller{ID: "other-1", Role: "user"}
	res := Resource{AuthorID: "author-1"}

	assert.True(t, Can(author, res, EditReview))
	assert.False(t, Can(other, res, EditReview))
}

func TestRequire_ReturnsForbidden(t *testing.T) {
	err := Require(Caller{ID: "u1", Role: "user"}, Resource{SellerID: "u2"}, ManageListing)
	assert.Error(t, err)

	err = Require(Caller{ID: "u2", Role: "user"}, Resource{SellerID: "u2"}, ManageListing)
	assert.NoError(t, err)
}
