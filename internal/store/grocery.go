package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dukerupert/grobuddy/internal/database"
	"github.com/dukerupert/grobuddy/internal/model"
	"github.com/dukerupert/grobuddy/internal/sqlerr"
)

type GroceryStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db, now: time.Now}
}

func scanItem(s scanner) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var purchasedAt sql.NullTime
	var purchased int

	err := s.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Quantity, &item.Unit, &item.Price,
		&item.CategoryID, &item.CategoryName, &purchased, &purchasedAt, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Purchased = purchased != 0
	if purchasedAt.Valid {
		item.PurchasedAt = &purchasedAt.Time
	}
	return &item, nil
}

const itemSelect = `SELECT gi.id, gi.user_id, gi.name, gi.quantity, gi.unit, gi.price,
	gi.category_id, c.name, gi.purchased, gi.purchased_at, gi.created_at
	FROM grocery_items gi JOIN categories c ON c.id = gi.category_id`

func getItem(ctx context.Context, q queryer, id int64) (*model.GroceryItem, error) {
	row := q.QueryRowContext(ctx, itemSelect+` WHERE gi.id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func listItems(ctx context.Context, q queryer, query string, args ...any) ([]model.GroceryItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ownedItem is the single ownership check for item mutations: a missing
// item yields ErrNotFound, another user's item yields ErrForbidden.
func ownedItem(ctx context.Context, q queryer, userID, id int64) (*model.GroceryItem, error) {
	item, err := getItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.UserID != userID {
		return nil, ErrForbidden
	}
	return item, nil
}

func requireCategory(ctx context.Context, q queryer, categoryID int64) error {
	ok, err := categoryExists(ctx, q, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCategory
	}
	return nil
}

// GetItemByID returns the item regardless of owner, or nil if absent.
func (s *GroceryStore) GetItemByID(ctx context.Context, id int64) (*model.GroceryItem, error) {
	return getItem(ctx, s.db, id)
}

// CreateItem inserts an unpurchased item owned by userID. An unknown
// category yields ErrInvalidCategory and nothing is written.
func (s *GroceryStore) CreateItem(ctx context.Context, userID int64, f model.ItemFields) (*model.GroceryItem, error) {
	var item *model.GroceryItem
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireCategory(ctx, tx, f.CategoryID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO grocery_items (user_id, category_id, name, quantity, unit, price) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, f.CategoryID, f.Name, f.Quantity, f.Unit, f.Price,
		)
		if err != nil {
			if sqlerr.IsForeignKeyViolation(err) {
				return ErrInvalidCategory
			}
			return fmt.Errorf("insert item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns the user's items, unpurchased first. A non-nil
// purchased filters on that state.
func (s *GroceryStore) ListItems(ctx context.Context, userID int64, purchased *bool) ([]model.GroceryItem, error) {
	if purchased == nil {
		return listItems(ctx, s.db,
			itemSelect+` WHERE gi.user_id = ? ORDER BY gi.purchased ASC, gi.id ASC`,
			userID,
		)
	}
	return listItems(ctx, s.db,
		itemSelect+` WHERE gi.user_id = ? AND gi.purchased = ? ORDER BY gi.id ASC`,
		userID, boolInt(*purchased),
	)
}

// SearchItems matches name as a case-insensitive literal substring; % and _
// in name match themselves.
func (s *GroceryStore) SearchItems(ctx context.Context, userID int64, name string) ([]model.GroceryItem, error) {
	return listItems(ctx, s.db,
		itemSelect+` WHERE gi.user_id = ? AND gi.name LIKE '%' || ? || '%' ESCAPE '\' ORDER BY gi.id ASC`,
		userID, likeEscaper.Replace(name),
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *GroceryStore) UpdateItem(ctx context.Context, userID, id int64, p model.ItemPatch) (*model.GroceryItem, error) {
	var item *model.GroceryItem
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, err := ownedItem(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if p.CategoryID != nil {
			if err := requireCategory(ctx, tx, *p.CategoryID); err != nil {
				return err
			}
			existing.CategoryID = *p.CategoryID
		}
		if p.Name != nil {
			existing.Name = *p.Name
		}
		if p.Quantity != nil {
			existing.Quantity = *p.Quantity
		}
		if p.Unit != nil {
			existing.Unit = *p.Unit
		}
		if p.Price != nil {
			existing.Price = *p.Price
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE grocery_items SET name = ?, quantity = ?, unit = ?, price = ?, category_id = ? WHERE id = ?`,
			existing.Name, existing.Quantity, existing.Unit, existing.Price, existing.CategoryID, id,
		)
		if err != nil {
			if sqlerr.IsForeignKeyViolation(err) {
				return ErrInvalidCategory
			}
			return fmt.Errorf("update item: %w", err)
		}
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *GroceryStore) DeleteItem(ctx context.Context, userID, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := ownedItem(ctx, tx, userID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM grocery_items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// SetPurchased sets the purchased flag. purchased_at is stamped when the
// flag is true and cleared when it is false.
func (s *GroceryStore) SetPurchased(ctx context.Context, userID, id int64, purchased bool) (*model.GroceryItem, error) {
	var item *model.GroceryItem
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := ownedItem(ctx, tx, userID, id); err != nil {
			return err
		}

		var err error
		if purchased {
			_, err = tx.ExecContext(ctx,
				`UPDATE grocery_items SET purchased = 1, purchased_at = ? WHERE id = ?`,
				s.now().UTC(), id,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE grocery_items SET purchased = 0, purchased_at = NULL WHERE id = ?`,
				id,
			)
		}
		if err != nil {
			return fmt.Errorf("set purchased: %w", err)
		}
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// PurchaseAll marks every unpurchased item of the user as purchased now.
func (s *GroceryStore) PurchaseAll(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE grocery_items SET purchased = 1, purchased_at = ? WHERE user_id = ? AND purchased = 0`,
		s.now().UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("purchase all: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// ListRecentPurchases returns purchased items, most recent first.
func (s *GroceryStore) ListRecentPurchases(ctx context.Context, userID int64) ([]model.GroceryItem, error) {
	return listItems(ctx, s.db,
		itemSelect+` WHERE gi.user_id = ? AND gi.purchased = 1 ORDER BY gi.purchased_at DESC, gi.id DESC`,
		userID,
	)
}

// ClearPurchased deletes the user's purchased items and nothing else.
func (s *GroceryStore) ClearPurchased(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM grocery_items WHERE user_id = ? AND purchased = 1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear purchased: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// TotalCost sums price*quantity over the user's purchased items, rounded to
// cents. No purchased items yields 0.
func (s *GroceryStore) TotalCost(ctx context.Context, userID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price * quantity), 0.0) FROM grocery_items WHERE user_id = ? AND purchased = 1`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total cost: %w", err)
	}
	return math.Round(total*100) / 100, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
