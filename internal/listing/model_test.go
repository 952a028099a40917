package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusAvailable, StatusPending, true},
		{StatusPending, StatusSold, true},
		{StatusPending, StatusAvailable, true},
		{StatusAvailable, StatusSold, false},
		{StatusSold, StatusAvailable, false},
		{StatusSold, StatusPending, false},
		{StatusAvailable, StatusAvailable, false},
		{StatusAvailable, StatusSuspended, true},
		{StatusPending, StatusSuspended, true},
		{StatusSold, StatusSuspended, true},

		// restore puts the listing back where suspension found it
		{StatusSuspended, StatusAvailable, true},
		{StatusSuspended, StatusPending, true},
		{StatusSuspended, StatusSold, true},

		{"bogus", StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition_ReturnsConflict(t *testing.T) {
	err := ValidateTransition(StatusSold, StatusPending)
	assert.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))

	assert.NoError(t, ValidateTransition(StatusAvailable, StatusPending))
}

func TestValidateDraft(t *testing.T) {
	images := []string{"https://img.example/1.jpg"}

	tests := []struct {
		name      string
		title     string
		price     int64
		category  string
		condition string
		images    []string
		wantErr   bool
	}{
		{"valid", "Road bike", 25000, "sports", "good", images, false},
		{"zero price ok", "Freebie", 0, "other", "fair", images, false},
		{"missing title", "", 100, "books", "new", images, true},
		{"negative price", "Bike", -1, "sports", "good", images, true},
		{"bad category", "Bike", 100, "gadgets", "good", images, true},
		{"bad condition", "Bike", 100, "sports", "mint", images, true},
		{"no images", "Bike", 100, "sports", "good", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.title, tt.price, tt.category, tt.condition, tt.images)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, fault.KindValidation, fault.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
