package postgres

import (
	"context"
	"database/sql"
	"errors"

	"goldshop/domain"
)

// GetProducts pages through products, optionally of one category.
func (r *PgRepository) GetProducts(ctx context.Context, categoryID *string, limit, offset int) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	query := `
		SELECT * FROM products
		WHERE CAST($1 AS uuid) IS NULL OR category_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &products, query, categoryID, limit, offset); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PgRepository) CountProducts(ctx context.Context, categoryID *string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE CAST($1 AS uuid) IS NULL OR category_id = $1`

	if err := r.db.GetContext(ctx, &count, query, categoryID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, domain.ErrProductNotFound
		}
		return p, err
	}
	return p, nil
}

func (r *PgRepository) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	query := `
		INSERT INTO products (category_id, name, karat, weight_grams, price)
		VALUES (:category_id, :name, :karat, :weight_grams, :price)
		RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, p)
	if err != nil {
		return created, err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.StructScan(&created)
	}
	return created, err
}

func (r *PgRepository) UpdateProduct(ctx context.Context, p domain.Product) error {
	query := `
		UPDATE products SET
			category_id = :category_id,
			name = :name,
			karat = :karat,
			weight_grams = :weight_grams,
			price = :price,
			updated_at = NOW()
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *PgRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}
