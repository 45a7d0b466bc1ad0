package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"goldshop/domain"
)

func (r *PgRepository) GetCategories(ctx context.Context) ([]domain.CategoryNode, error) {
	categories := make([]domain.CategoryNode, 0)
	query := `SELECT * FROM categories ORDER BY sort_order, lower(name), id`

	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PgRepository) GetCategory(ctx context.Context, id string) (domain.CategoryNode, error) {
	var c domain.CategoryNode
	query := `SELECT * FROM categories WHERE id = $1`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, domain.ErrCategoryNotFound
		}
		return c, err
	}
	return c, nil
}

// CreateCategory appends the category after its last sibling.
func (r *PgRepository) CreateCategory(ctx context.Context, c domain.CategoryNode) (domain.CategoryNode, error) {
	var created domain.CategoryNode
	query := `
		INSERT INTO categories (parent_id, name, description, icon, color, is_active, sort_order)
		VALUES (
			:parent_id, :name, :description, :icon, :color, :is_active,
			COALESCE((
				SELECT MAX(sort_order) + 1 FROM categories
				WHERE parent_id IS NOT DISTINCT FROM CAST(:parent_id AS uuid)
			), 0)
		) RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, c)
	if err != nil {
		return created, err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.StructScan(&created)
	}
	return created, err
}

// UpdateCategories applies the same sparse change to every id and returns the
// number of rows written. Parent changes run under the tree lock and fail
// with domain.ErrCategoryCycle when the new parent sits inside the moved
// subtrees.
func (r *PgRepository) UpdateCategories(ctx context.Context, ids []string, changes domain.CategoryChanges) (int64, error) {
	sets, args := changeSet(changes)
	if len(sets) == 0 {
		return 0, nil
	}
	args = append(args, pq.Array(ids))
	query := fmt.Sprintf(
		`UPDATE categories SET %s, updated_at = NOW() WHERE id = ANY($%d)`,
		strings.Join(sets, ", "), len(args),
	)

	if !changes.ParentSet {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	var updated int64
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		if err := checkAcyclic(ctx, tx, ids, changes.ParentID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		updated, err = res.RowsAffected()
		return err
	})
	return updated, err
}

// treeLockKey names the advisory lock every reparenting transaction holds, so
// the ancestry check and the write see the same tree.
const treeLockKey int64 = 0x676f6c6473686f70

func lockTree(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, treeLockKey); err != nil {
		return fmt.Errorf("failed to lock category tree: %w", err)
	}
	return nil
}

// checkAcyclic fails when parentID is one of ids or a descendant of one.
// A nil parent is the root and always allowed.
func checkAcyclic(ctx context.Context, tx *sqlx.Tx, ids []string, parentID *string) error {
	if parentID == nil {
		return nil
	}

	query := `
		WITH RECURSIVE ancestors (id, parent_id) AS (
			SELECT id, parent_id FROM categories WHERE id = $1
			UNION
			SELECT c.id, c.parent_id FROM categories c
			JOIN ancestors a ON c.id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = ANY($2))`

	var cycle bool
	if err := tx.GetContext(ctx, &cycle, query, *parentID, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to check ancestry: %w", err)
	}
	if cycle {
		return domain.ErrCategoryCycle
	}
	return nil
}

func changeSet(c domain.CategoryChanges) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if c.Name != nil {
		add("name", *c.Name)
	}
	if c.Description != nil {
		add("description", *c.Description)
	}
	if c.Color != nil {
		add("color", *c.Color)
	}
	if c.Icon != nil {
		add("icon", *c.Icon)
	}
	if c.IsActive != nil {
		add("is_active", *c.IsActive)
	}
	if c.ParentSet {
		add("parent_id", c.ParentID)
	}
	return sets, args
}

// DeleteCategories removes the categories. Their products and surviving
// children are detached by the foreign keys.
func (r *PgRepository) DeleteCategories(ctx context.Context, ids []string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ProductCounts returns the live number of products per category, omitting
// categories without products.
func (r *PgRepository) ProductCounts(ctx context.Context, ids []string) (map[string]int, error) {
	var rows []struct {
		CategoryID string `db:"category_id"`
		Count      int    `db:"count"`
	}
	query := `
		SELECT category_id, COUNT(*) AS count FROM products
		WHERE category_id = ANY($1)
		GROUP BY category_id`

	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

// ReorderCategory moves id under parentID at sortOrder, shifting the siblings
// at or after that position down by one. A nil sortOrder appends. It returns
// the sort order the category ended up with.
func (r *PgRepository) ReorderCategory(ctx context.Context, id string, parentID *string, sortOrder *int) (int, error) {
	var order int
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockTree(ctx, tx); err != nil {
			return err
		}
		if err := checkAcyclic(ctx, tx, []string{id}, parentID); err != nil {
			return err
		}

		lock := `
			SELECT id FROM categories
			WHERE parent_id IS NOT DISTINCT FROM CAST($1 AS uuid)
			ORDER BY id FOR UPDATE`
		var siblings []string
		if err := tx.SelectContext(ctx, &siblings, lock, parentID); err != nil {
			return fmt.Errorf("failed to lock siblings: %w", err)
		}

		if sortOrder == nil {
			next := `
				SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories
				WHERE parent_id IS NOT DISTINCT FROM CAST($1 AS uuid) AND id <> $2`
			if err := tx.GetContext(ctx, &order, next, parentID, id); err != nil {
				return fmt.Errorf("failed to find last position: %w", err)
			}
		} else {
			order = max(0, *sortOrder)
			shift := `
				UPDATE categories SET sort_order = sort_order + 1, updated_at = NOW()
				WHERE parent_id IS NOT DISTINCT FROM CAST($1 AS uuid) AND id <> $2 AND sort_order >= $3`
			if _, err := tx.ExecContext(ctx, shift, parentID, id, order); err != nil {
				return fmt.Errorf("failed to shift siblings: %w", err)
			}
		}

		move := `UPDATE categories SET parent_id = $1, sort_order = $2, updated_at = NOW() WHERE id = $3`
		res, err := tx.ExecContext(ctx, move, parentID, order, id)
		if err != nil {
			return fmt.Errorf("failed to move category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
	return order, err
}

// RecountCategories recomputes product_count and gold_weight of the given
// categories from their products.
func (r *PgRepository) RecountCategories(ctx context.Context, ids []string) ([]domain.CategoryStats, error) {
	stats := make([]domain.CategoryStats, 0, len(ids))
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var products []domain.Product
		query := `SELECT * FROM products WHERE category_id = ANY($1)`
		if err := tx.SelectContext(ctx, &products, query, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}

		byCategory := AggregateStats(ids, products)
		update := `
			UPDATE categories SET product_count = $1, gold_weight = $2, updated_at = NOW()
			WHERE id = $3`
		for _, id := range ids {
			s := byCategory[id]
			if _, err := tx.ExecContext(ctx, update, s.ProductCount, s.GoldWeight, id); err != nil {
				return fmt.Errorf("failed to update counters of %s: %w", id, err)
			}
			stats = append(stats, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AggregateStats sums product counts and fine gold weight per category. Every
// id gets an entry, zero when it has no products.
func AggregateStats(ids []string, products []domain.Product) map[string]domain.CategoryStats {
	out := make(map[string]domain.CategoryStats, len(ids))
	for _, id := range ids {
		out[id] = domain.CategoryStats{CategoryID: id, GoldWeight: decimal.Zero}
	}
	for _, p := range products {
		if p.CategoryID == nil {
			continue
		}
		s, ok := out[*p.CategoryID]
		if !ok {
			continue
		}
		s.ProductCount++
		s.GoldWeight = s.GoldWeight.Add(p.FineGoldGrams())
		out[*p.CategoryID] = s
	}
	return out
}
