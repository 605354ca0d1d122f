// This file defines repository methods for stock items and their movement
// history. The quantity on an item is derived state maintained in the same
// transaction as the movement insert; a row lock on the item keeps
// concurrent sorties from racing the non-negative check.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

// StockRepo encapsulates all database queries related to stock.
type StockRepo struct{ DB *sql.DB }

func NewStockRepo(db *sql.DB) *StockRepo { return &StockRepo{DB: db} }

// CreateItem inserts a stock item with zero quantity and returns its ID.
func (r *StockRepo) CreateItem(ctx context.Context, item *model.StockItem) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stock_items (reference, label, unit, quantity) VALUES (?,?,?,0)",
		strings.TrimSpace(item.Reference), item.Label, item.Unit)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListItems returns all stock items ordered by reference.
func (r *StockRepo) ListItems(ctx context.Context) ([]model.StockItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,reference,label,unit,quantity,created_at,updated_at FROM stock_items ORDER BY reference")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StockItem
	for rows.Next() {
		var it model.StockItem
		if err := rows.Scan(&it.ID, &it.Reference, &it.Label, &it.Unit, &it.Quantity,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItem fetches one stock item by id.
func (r *StockRepo) GetItem(ctx context.Context, id uint64) (model.StockItem, error) {
	var it model.StockItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,reference,label,unit,quantity,created_at,updated_at FROM stock_items WHERE id=? LIMIT 1",
		id).Scan(&it.ID, &it.Reference, &it.Label, &it.Unit, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StockItem{}, ErrNotFound
	}
	return it, err
}

// RecordMovement appends a movement row and adjusts the item quantity in
// one transaction. Quantity must be positive; a sortie larger than the
// quantity on hand returns ErrInsufficientStock and changes nothing.
func (r *StockRepo) RecordMovement(ctx context.Context, m *model.StockMovement) (model.StockItem, error) {
	if m.Quantity <= 0 {
		return model.StockItem{}, ErrInvalidTransition
	}
	if m.Direction != model.MovementIn && m.Direction != model.MovementOut {
		return model.StockItem{}, ErrInvalidTransition
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.StockItem{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var onHand int64
	err = tx.QueryRowContext(ctx,
		"SELECT quantity FROM stock_items WHERE id=? FOR UPDATE", m.ItemID).Scan(&onHand)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StockItem{}, ErrNotFound
	}
	if err != nil {
		return model.StockItem{}, err
	}

	delta := m.Quantity
	if m.Direction == model.MovementOut {
		if onHand < m.Quantity {
			return model.StockItem{}, ErrInsufficientStock
		}
		delta = -m.Quantity
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO stock_movements (item_id, direction, quantity, reason, created_by) VALUES (?,?,?,?,?)",
		m.ItemID, m.Direction, m.Quantity, m.Reason, m.CreatedBy)
	if err != nil {
		return model.StockItem{}, err
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = uint64(id)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE stock_items SET quantity=quantity+? WHERE id=?", delta, m.ItemID); err != nil {
		return model.StockItem{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.StockItem{}, err
	}
	return r.GetItem(ctx, m.ItemID)
}

// Movements returns the movement history for one item, newest first.
func (r *StockRepo) Movements(ctx context.Context, itemID uint64) ([]model.StockMovement, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,item_id,direction,quantity,reason,created_by,created_at FROM stock_movements WHERE item_id=? ORDER BY created_at DESC",
		itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Direction, &m.Quantity, &m.Reason,
			&m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
