package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantAvg   float64
		wantCount int
	}{
		{"empty set resets to zero", nil, 0, 0},
		{"single rating", []int{4}, 4, 1},
		{"even average", []int{4, 2}, 3, 2},
		{"rounds to two decimals", []int{5, 4, 4}, 4.33, 3},
		{"all fives", []int{5, 5, 5, 5}, 5, 4},
		{"mixed", []int{1, 2, 3, 4, 5}, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, count := Aggregate(tt.ratings)
			assert.Equal(t, tt.wantAvg, avg)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestValidateDraft(t *testing.T) {
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name       string
		rating     int
		comment    string
		reviewType string
		wantKind   fault.Kind
		wantErr    bool
	}{
		{"valid product review", 5, "great", TypeProduct, 0, false},
		{"valid seller review", 1, "slow shipping", TypeSeller, 0, false},
		{"rating too low", 0, "bad", TypeProduct, fault.KindValidation, true},
		{"rating too high", 6, "bad", TypeProduct, fault.KindValidation, true},
		{"empty comment", 3, "", TypeProduct, fault.KindValidation, true},
		{"comment too long", 3, string(long), TypeProduct, fault.KindValidation, true},
		{"unknown type", 3, "ok", "shop", fault.KindValidation, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.rating, tt.comment, tt.reviewType)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantKind, fault.KindOf(err))
		})
	}
}
