package review

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedReview struct {
	productID  string
	sellerID   string
	rating     int
	reviewType string
}

// fakeRatingStore answers Recompute's queries from an in-memory review
// table. It applies every predicate present in the SQL, so a query that
// narrows by review_type gets narrowed results.
type fakeRatingStore struct {
	reviews []storedReview
	updates map[string][]any
}

func (s *fakeRatingStore) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	id := args[0].(string)
	var ratings []int
	for _, r := range s.reviews {
		if strings.Contains(sql, "product_id = $1") && r.productID != id {
			continue
		}
		if strings.Contains(sql, "seller_id = $1") && r.sellerID != id {
			continue
		}
		if strings.Contains(sql, "review_type = 'product'") && r.reviewType != TypeProduct {
			continue
		}
		if strings.Contains(sql, "review_type = 'seller'") && r.reviewType != TypeSeller {
			continue
		}
		ratings = append(ratings, r.rating)
	}
	return &fakeRatingRows{ratings: ratings}, nil
}

func (s *fakeRatingStore) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	table := "users"
	if strings.Contains(sql, "UPDATE products") {
		table = "products"
	}
	s.updates[table] = args
	return pgconn.CommandTag{}, nil
}

type fakeRatingRows struct {
	ratings []int
	i       int
}

func (r *fakeRatingRows) Close()                                       {}
func (r *fakeRatingRows) Err() error                                   { return nil }
func (r *fakeRatingRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRatingRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRatingRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRatingRows) RawValues() [][]byte                          { return nil }
func (r *fakeRatingRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRatingRows) Next() bool {
	r.i++
	return r.i <= len(r.ratings)
}

func (r *fakeRatingRows) Scan(dest ...any) error {
	*(dest[0].(*int)) = r.ratings[r.i-1]
	return nil
}

func TestRecompute_OneReviewFeedsBothAggregates(t *testing.T) {
	tests := []struct {
		name       string
		reviewType string
	}{
		{"product review counts for the seller too", TypeProduct},
		{"seller review counts for the product too", TypeSeller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeRatingStore{
				reviews: []storedReview{
					{productID: "p1", sellerID: "s1", rating: 4, reviewType: tt.reviewType},
				},
				updates: map[string][]any{},
			}

			require.NoError(t, Recompute(context.Background(), store, "p1", "s1"))

			assert.Equal(t, []any{"p1", 4.0, 1}, store.updates["products"])
			assert.Equal(t, []any{"s1", 4.0, 1}, store.updates["users"])
		})
	}
}

func TestRecompute_SellerScopeSpansListings(t *testing.T) {
	store := &fakeRatingStore{
		reviews: []storedReview{
			{productID: "p1", sellerID: "s1", rating: 5, reviewType: TypeProduct},
			{productID: "p2", sellerID: "s1", rating: 2, reviewType: TypeSeller},
			{productID: "p3", sellerID: "other", rating: 1, reviewType: TypeProduct},
		},
		updates: map[string][]any{},
	}

	require.NoError(t, Recompute(context.Background(), store, "p1", "s1"))

	// p1 sees only its own review; s1 sees both of theirs, not other's.
	assert.Equal(t, []any{"p1", 5.0, 1}, store.updates["products"])
	assert.Equal(t, []any{"s1", 3.5, 2}, store.updates["users"])
}

func TestRecompute_EmptySetResetsAggregates(t *testing.T) {
	store := &fakeRatingStore{updates: map[string][]any{}}

	require.NoError(t, Recompute(context.Background(), store, "p1", "s1"))

	assert.Equal(t, []any{"p1", 0.0, 0}, store.updates["products"])
	assert.Equal(t, []any{"s1", 0.0, 0}, store.updates["users"])
}
