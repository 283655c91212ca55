package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

const productColumns = `id, title, description, price, category, status, stock, images, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p      model.Product
		price  float64
		status string
		images []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.Category, &status, &p.Stock, &images, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Price = decimal.NewFromFloat(price).Round(2)
	p.Status = model.ProductStatus(status)
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images of product %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

func encodeImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}

// mapProductError turns constraint violations into domain errors.
func mapProductError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23514" || pgErr.Code == "23502") {
		return fmt.Errorf("%w: %s", domainErrors.ErrInvalidProduct, pgErr.Message)
	}
	return err
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	images, err := encodeImages(product.Images)
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO products (title, description, price, category, status, stock, images)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING ` + productColumns
	created, err := scanProduct(r.storage.pool.QueryRow(ctx, query,
		product.Title, product.Description, product.Price.Round(2).InexactFloat64(),
		product.Category, string(product.Status), product.Stock, images))
	if err != nil {
		return nil, mapProductError(err)
	}
	return created, nil
}

// Update rewrites catalog fields. Stock changes go through the audited stock
// repository instead.
func (r *productRepository) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	images, err := encodeImages(product.Images)
	if err != nil {
		return nil, err
	}

	const query = `UPDATE products SET title=$2, description=$3, price=$4, category=$5, status=$6, images=$7, updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + productColumns
	updated, err := scanProduct(r.storage.pool.QueryRow(ctx, query,
		product.ID, product.Title, product.Description, product.Price.Round(2).InexactFloat64(),
		product.Category, string(product.Status), images))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, mapProductError(err)
	}
	return updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return r.getOne(ctx, query, id)
}

// GetByTitle matches the title exactly; the oldest product wins on duplicates.
func (r *productRepository) GetByTitle(ctx context.Context, title string) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE title=$1 ORDER BY id LIMIT 1`
	return r.getOne(ctx, query, title)
}

func (r *productRepository) getOne(ctx context.Context, query string, arg any) (*model.Product, error) {
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
                   WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
                     AND ($2 = '' OR category = $2)
                     AND ($3 = '' OR status = $3)
                   ORDER BY id
                   LIMIT $4 OFFSET $5`
	rows, err := r.storage.pool.Query(ctx, query, filter.Query, filter.Category, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
