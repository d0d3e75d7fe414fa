package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	commonErrors "github.com/velora/commerce/internal/common/errors"
)

type Product struct {
	ID                 uuid.UUID
	Name               string
	Price              decimal.Decimal
	OriginalPrice      decimal.NullDecimal
	Image              string
	Images             []string
	Sex                string
	CategorySlug       string
	SubcategorySlug    string
	Description        string
	Sizes              []string
	Colors             []string
	Material           string
	Care               string
	IsFeatured         bool
	IsNewArrival       bool
	IsOnSale           bool
	DiscountPercentage decimal.NullDecimal
	Stock              int32
	Tags               []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EffectivePrice applies an active percentage discount. Off-sale products
// sell at list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if !p.IsOnSale || !p.DiscountPercentage.Valid {
		return p.Price
	}
	discount := p.Price.Mul(p.DiscountPercentage.Decimal).Div(decimal.NewFromInt(100))
	return p.Price.Sub(discount)
}

type Category struct {
	ID   uuid.UUID
	Name string
	Slug string
}

type Subcategory struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Slug       string
}

type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Username  string
	Rating    int32
	Comment   string
	CreatedAt time.Time
}

type FindProductsFilter struct {
	Sex             string
	CategorySlug    string
	SubcategorySlug string
	Search          string
	IsFeatured      *bool
	IsNewArrival    *bool
	IsOnSale        *bool
	Limit           int32
	Offset          int32
}

type InsertReviewParams struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int32
	Comment   string
}

type ProductRepository interface {
	FindProducts(c context.Context, filter FindProductsFilter) ([]Product, error)
	FindProductById(c context.Context, id uuid.UUID) (Product, error)
	FindCategories(c context.Context) ([]Category, error)
	FindSubcategoriesByCategoryId(c context.Context, categoryId uuid.UUID) ([]Subcategory, error)
	FindReviewsByProductId(c context.Context, productId uuid.UUID) ([]Review, error)
	InsertReview(c context.Context, param InsertReviewParams) (Review, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &postgresRepository{pool: pool}
}

const productColumns = `id, name, price, original_price, image, images, sex,
	category_slug, subcategory_slug, description, sizes, colors, material,
	care, is_featured, is_new_arrival, is_on_sale, discount_percentage,
	stock, tags, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p             Product
		price         pgtype.Numeric
		originalPrice pgtype.Numeric
		discount      pgtype.Numeric
	)
	err := row.Scan(
		&p.ID, &p.Name, &price, &originalPrice, &p.Image, &p.Images, &p.Sex,
		&p.CategorySlug, &p.SubcategorySlug, &p.Description, &p.Sizes,
		&p.Colors, &p.Material, &p.Care, &p.IsFeatured, &p.IsNewArrival,
		&p.IsOnSale, &discount, &p.Stock, &p.Tags, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	p.Price = DecimalFromNumeric(price)
	p.OriginalPrice = NullDecimalFromNumeric(originalPrice)
	p.DiscountPercentage = NullDecimalFromNumeric(discount)
	return p, nil
}

func (r *postgresRepository) FindProducts(
	c context.Context,
	filter FindProductsFilter,
) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}

	appendArg := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}
	if filter.Sex != "" {
		appendArg(" AND sex = $%d", filter.Sex)
	}
	if filter.CategorySlug != "" {
		appendArg(" AND category_slug = $%d", filter.CategorySlug)
	}
	if filter.SubcategorySlug != "" {
		appendArg(" AND subcategory_slug = $%d", filter.SubcategorySlug)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		idx := len(args)
		query += fmt.Sprintf(
			" AND (name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			idx, idx,
		)
	}
	if filter.IsFeatured != nil {
		appendArg(" AND is_featured = $%d", *filter.IsFeatured)
	}
	if filter.IsNewArrival != nil {
		appendArg(" AND is_new_arrival = $%d", *filter.IsNewArrival)
	}
	if filter.IsOnSale != nil {
		appendArg(" AND is_on_sale = $%d", *filter.IsOnSale)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		appendArg(" LIMIT $%d", filter.Limit)
	}
	if filter.Offset > 0 {
		appendArg(" OFFSET $%d", filter.Offset)
	}

	rows, err := r.pool.Query(c, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed finding products with error=%w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product with error=%w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepository) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(c, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, commonErrors.ErrProductNotFound
		}
		return Product{}, fmt.Errorf("failed finding product by id with error=%w", err)
	}
	return p, nil
}

func (r *postgresRepository) FindCategories(c context.Context) ([]Category, error) {
	rows, err := r.pool.Query(c, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed finding categories with error=%w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug); err != nil {
			return nil, fmt.Errorf("failed scanning category with error=%w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *postgresRepository) FindSubcategoriesByCategoryId(
	c context.Context,
	categoryId uuid.UUID,
) ([]Subcategory, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT id, category_id, name, slug FROM subcategories WHERE category_id = $1 ORDER BY name`,
		categoryId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding subcategories with error=%w", err)
	}
	defer rows.Close()

	subcategories := []Subcategory{}
	for rows.Next() {
		var sub Subcategory
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug); err != nil {
			return nil, fmt.Errorf("failed scanning subcategory with error=%w", err)
		}
		subcategories = append(subcategories, sub)
	}
	return subcategories, rows.Err()
}

func (r *postgresRepository) FindReviewsByProductId(
	c context.Context,
	productId uuid.UUID,
) ([]Review, error) {
	rows, err := r.pool.Query(c, `
		SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`,
		productId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding reviews with error=%w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID, &review.ProductID, &review.UserID,
			&review.Username, &review.Rating, &review.Comment, &review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed scanning review with error=%w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *postgresRepository) InsertReview(
	c context.Context,
	param InsertReviewParams,
) (Review, error) {
	row := r.pool.QueryRow(c, `
		WITH inserted AS (
			INSERT INTO reviews (id, product_id, user_id, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, product_id, user_id, rating, comment, created_at
		)
		SELECT i.id, i.product_id, i.user_id, u.username, i.rating, i.comment, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id`,
		uuid.New(), param.ProductID, param.UserID, param.Rating, param.Comment,
	)
	var review Review
	err := row.Scan(
		&review.ID, &review.ProductID, &review.UserID,
		&review.Username, &review.Rating, &review.Comment, &review.CreatedAt,
	)
	if err != nil {
		return Review{}, fmt.Errorf("failed inserting review with error=%w", err)
	}
	return review, nil
}
