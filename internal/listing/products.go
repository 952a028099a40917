package listing

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

const productColumns = `id, seller_id, buyer_id, title, description, price, category, condition,
        images, location, views, rating_avg, rating_count, status, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.BuyerID, &p.Title, &p.Description, &p.Price,
		&p.Category, &p.Condition, &p.Images, &p.Location, &p.Views,
		&p.Ratings.Average, &p.Ratings.Count, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// fetchProduct re-reads current persisted state, classifying a miss as
// NotFound so handlers can translate directly.
func fetchProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(db.Conn.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return Product{}, fault.NotFound("product not found")
		}
		return Product{}, fault.Unexpected("fetch product: %v", err)
	}
	return p, nil
}

type createProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
	Location    string   `json:"location"`
}

// POST /products
func CreateProduct(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := ValidateDraft(req.Title, req.Price, req.Category, req.Condition, req.Images); err != nil {
		return fault.Respond(c, err)
	}

	ctx := c.Request().Context()
	productID := uuid.New().String()

	p, err := scanProduct(db.Conn.QueryRow(ctx,
		`INSERT INTO products (id, seller_id, title, description, price, category, condition, images, location)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+productColumns,
		productID, caller.ID, req.Title, req.Description, req.Price,
		req.Category, req.Condition, req.Images, req.Location,
	))
	if err != nil {
		return fault.Respond(c, fault.Unexpected("create product: %v", err))
	}

	return c.JSON(http.StatusCreated, p)
}

// GET /products — public discovery with optional filters
func GetAllProducts(c echo.Context) error {
	q := c.QueryParam("q")
	category := c.QueryParam("category")
	condition := c.QueryParam("condition")
	minPrice := c.QueryParam("min_price")
	maxPrice := c.QueryParam("max_price")
	sort := c.QueryParam("sort")

	limit := 20
	offset := 0
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	// Suspended listings are hidden from discovery.
	where := []string{"status <> 'suspended'"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q != "" {
		ph := arg("%" + q + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", ph, ph))
	}
	if category != "" {
		where = append(where, "category = "+arg(category))
	}
	if condition != "" {
		where = append(where, "condition = "+arg(condition))
	}
	if minPrice != "" {
		if v, err := strconv.ParseInt(minPrice, 10, 64); err == nil {
			where = append(where, "price >= "+arg(v))
		}
	}
	if maxPrice != "" {
		if v, err := strconv.ParseInt(maxPrice, 10, 64); err == nil {
			where = append(where, "price <= "+arg(v))
		}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + strings.Join(where, " AND ")

	switch sort {
	case "price_asc":
		query += " ORDER BY price ASC"
	case "price_desc":
		query += " ORDER BY price DESC"
	case "rating_desc":
		query += " ORDER BY rating_avg DESC"
	case "oldest":
		query += " ORDER BY created_at ASC"
	default:
		query += " ORDER BY created_at DESC"
	}
	query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(limit), arg(offset))

	rows, err := db.Conn.Query(c.Request().Context(), query, args...)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list products: %v", err))
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return fault.Respond(c, fault.Unexpected("scan product: %v", err))
		}
		products = append(products, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// GET /products/:id — bumps the view counter on every read
func GetProduct(c echo.Context) error {
	productID := c.Param("id")
	if _, err := uuid.Parse(productID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product id"})
	}

	p, err := scanProduct(db.Conn.QueryRow(c.Request().Context(),
		`UPDATE products SET views = views + 1 WHERE id = $1 RETURNING `+productColumns,
		productID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.NotFound("product not found"))
		}
		return fault.Respond(c, fault.Unexpected("fetch product: %v", err))
	}

	return c.JSON(http.StatusOK, p)
}

// GET /products/me
func GetMyProducts(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at DESC`,
		caller.ID,
	)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list own products: %v", err))
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return fault.Respond(c, fault.Unexpected("scan product: %v", err))
		}
		products = append(products, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// PUT /products/:id — seller edits listing fields. Status and buyer are
// never touched here; those move only through the purchase flow.
func UpdateProduct(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	productID := c.Param("id")
	ctx := c.Request().Context()

	current, err := fetchProduct(ctx, productID)
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: current.SellerID}, authz.ManageListing); err != nil {
		return fault.Respond(c, err)
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := ValidateDraft(req.Title, req.Price, req.Category, req.Condition, req.Images); err != nil {
		return fault.Respond(c, err)
	}

	p, err := scanProduct(db.Conn.QueryRow(ctx,
		`UPDATE products
         SET title = $1, description = $2, price = $3, category = $4, condition = $5,
             images = $6, location = $7, updated_at = NOW()
         WHERE id = $8
         RETURNING `+productColumns,
		req.Title, req.Description, req.Price, req.Category, req.Condition,
		req.Images, req.Location, productID,
	))
	if err != nil {
		return fault.Respond(c, fault.Unexpected("update product: %v", err))
	}

	return c.JSON(http.StatusOK, p)
}

// DELETE /products/:id — permitted only while the listing is available.
func DeleteProduct(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	productID := c.Param("id")
	ctx := c.Request().Context()

	current, err := fetchProduct(ctx, productID)
	if err != nil {
		return fault.Respond(c, err)
	}
	if err := authz.Require(caller, authz.Resource{SellerID: current.SellerID}, authz.ManageListing); err != nil {
		return fault.Respond(c, err)
	}

	// Guard against a purchase racing the delete.
	res, err := db.Conn.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND status = 'available'`, productID)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("delete product: %v", err))
	}
	if res.RowsAffected() == 0 {
		return fault.Respond(c, fault.Conflict("listing is %s, only available listings can be deleted", current.Status))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted", "product_id": productID})
}
