package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymbro/gymbro-api/internal/domain/entity"
	"github.com/gymbro/gymbro-api/internal/domain/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
	id, title, description, category, gender, price,
	image_original_id, image_original_url, image_thumbnail_id, image_thumbnail_url,
	created_at, updated_at`

func scanProduct(row pgx.Row, p *entity.Product) error {
	return row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Gender, &p.Price,
		&p.Images.Original.PublicID, &p.Images.Original.URL,
		&p.Images.Thumbnail.PublicID, &p.Images.Thumbnail.URL,
		&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Create(p *entity.Product) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (title, description, category, gender, price,
			image_original_id, image_original_url, image_thumbnail_id, image_thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Description, p.Category, p.Gender, p.Price,
		p.Images.Original.PublicID, p.Images.Original.URL,
		p.Images.Thumbnail.PublicID, p.Images.Thumbnail.URL)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) GetByID(id string) (*entity.Product, error) {
	ctx := context.Background()
	p := &entity.Product{}

	row := r.pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE id = $1`, id)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *ProductRepository) Update(p *entity.Product) error {
	ctx := context.Background()
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET title = $1, description = $2, category = $3, gender = $4, price = $5,
			image_original_id = $6, image_original_url = $7,
			image_thumbnail_id = $8, image_thumbnail_url = $9,
			updated_at = $10
		WHERE id = $11
	`, p.Title, p.Description, p.Category, p.Gender, p.Price,
		p.Images.Original.PublicID, p.Images.Original.URL,
		p.Images.Thumbnail.PublicID, p.Images.Thumbnail.URL,
		p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(id string) error {
	ctx := context.Background()

	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProductRepository) Search(f repository.ProductFilter) ([]entity.Product, error) {
	ctx := context.Background()
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE category = ANY($1) AND gender = ANY($2)
		ORDER BY created_at DESC
		LIMIT $3
	`, f.Categories, f.Genders, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]entity.Product, 0)
	for rows.Next() {
		var p entity.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
