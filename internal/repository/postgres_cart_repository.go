package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresCartRepository implements CartRepository on Postgres
type PostgresCartRepository struct {
	pool DBPool
}

func NewPostgresCartRepository(pool DBPool) *PostgresCartRepository {
	return &PostgresCartRepository{pool: pool}
}

func (r *PostgresCartRepository) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	var c models.Cart
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE id = $1`, cartID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, title, price, quantity, image
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items %s: %w", cartID, err)
	}
	defer rows.Close()

	c.Items = []models.LineItem{}
	for rows.Next() {
		var it models.LineItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Title, &it.Price, &it.Quantity, &it.Image); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *PostgresCartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`, cart.ID, cart.UserID).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartExists
		}
		return fmt.Errorf("create cart: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.LineItem{}
	}
	return nil
}

func (r *PostgresCartRepository) AddItem(ctx context.Context, cartID string, item *models.LineItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, title, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, cartID, item.ProductID, item.Title, item.Price, item.Quantity, item.Image)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("insert cart item: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresCartRepository) UpdateItem(ctx context.Context, cartID string, item models.LineItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, price = $4
		WHERE cart_id = $1 AND id = $2
	`, cartID, item.ID, item.Quantity, item.Price)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return ErrItemNotFound
	}

	return tx.Commit(ctx)
}

func (r *PostgresCartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return ErrItemNotFound
	}

	return tx.Commit(ctx)
}

// DeleteCart removes the cart; items go with it via ON DELETE CASCADE
func (r *PostgresCartRepository) DeleteCart(ctx context.Context, cartID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCartNotFound
	}
	return nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	tag, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCartNotFound
	}
	return nil
}
