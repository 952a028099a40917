package review

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

// ratingStore is the slice of pgx.Tx that Recompute needs.
type ratingStore interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Aggregate reduces a full set of ratings to {average, count}. An empty
// set resets to the zero aggregate rather than leaving a stale value.
// The average is rounded to two decimals.
func Aggregate(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*100) / 100, len(ratings)
}

// Recompute recalculates the stored rating aggregates for a product and
// its seller from the full review set, inside the caller's transaction
// so the review write and the derived values land together. Every
// review counts toward both scopes: the product aggregate covers all
// reviews of that product, the seller aggregate all reviews across the
// seller's listings. review_type is display metadata and never narrows
// an aggregate.
func Recompute(ctx context.Context, store ratingStore, productID, sellerID string) error {
	if err := recomputeScope(ctx, store,
		`SELECT rating FROM reviews WHERE product_id = $1`,
		`UPDATE products SET rating_avg = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`,
		productID,
	); err != nil {
		return err
	}
	return recomputeScope(ctx, store,
		`SELECT rating FROM reviews WHERE seller_id = $1`,
		`UPDATE users SET rating_avg = $2, rating_count = $3 WHERE id = $1`,
		sellerID,
	)
}

func recomputeScope(ctx context.Context, store ratingStore, selectSQL, updateSQL, id string) error {
	rows, err := store.Query(ctx, selectSQL, id)
	if err != nil {
		return fault.Unexpected("load ratings: %v", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return fault.Unexpected("scan rating: %v", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return fault.Unexpected("load ratings: %v", err)
	}
	rows.Close()

	avg, count := Aggregate(ratings)
	if _, err := store.Exec(ctx, updateSQL, id, avg, count); err != nil {
		return fault.Unexpected("store aggregate: %v", err)
	}
	return nil
}
