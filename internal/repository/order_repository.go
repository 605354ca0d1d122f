// This file defines repository methods for orders: creation, listing,
// status transitions and production stage tracking. Status transitions are
// validated inside a transaction holding a row lock so two concurrent
// updates cannot both succeed from the same starting state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

// OrderRepo encapsulates all database queries related to orders.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = "id,client_name,description,quantity,unit_cents,status,stage,due_date,created_by,created_at,updated_at"

// validTransitions lists, per current status, the statuses an order may
// move to. livree is terminal; annulee is reachable from everything else.
var validTransitions = map[string][]string{
	model.OrderStatusReceived:   {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusDone, model.OrderStatusCancelled},
	model.OrderStatusDone:       {model.OrderStatusDelivered, model.OrderStatusCancelled},
	model.OrderStatusDelivered:  {},
	model.OrderStatusCancelled:  {},
}

// stageOrder is the fixed production pipeline an en_production order
// walks through.
var stageOrder = []string{model.StagePrinting, model.StageDrying, model.StageControl, model.StagePackaging}

// Create inserts a new order in status recue and returns its ID.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (client_name, description, quantity, unit_cents, status, stage, due_date, created_by) VALUES (?,?,?,?,?,?,?,?)",
		o.ClientName, o.Description, o.Quantity, o.UnitCents,
		model.OrderStatusReceived, "", o.DueDate, o.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an order by id, returning ErrNotFound when absent.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.ClientName, &o.Description, &o.Quantity, &o.UnitCents,
			&o.Status, &o.Stage, &o.DueDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	return o, err
}

// List returns orders, optionally filtered by status, newest first.
func (r *OrderRepo) List(ctx context.Context, status string) ([]model.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ClientName, &o.Description, &o.Quantity, &o.UnitCents,
			&o.Status, &o.Stage, &o.DueDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order to a new status after validating the
// transition against validTransitions. Entering en_production resets the
// stage to the first step of the pipeline; leaving it clears the stage.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, next string) (model.Order, error) {
	if _, known := validTransitions[next]; !known {
		return model.Order{}, ErrInvalidTransition
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM orders WHERE id=? FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	if !transitionAllowed(current, next) {
		return model.Order{}, ErrInvalidTransition
	}

	stage := ""
	if next == model.OrderStatusInProgress {
		stage = stageOrder[0]
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status=?, stage=? WHERE id=?", next, stage, id); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	return r.GetByID(ctx, id)
}

// AdvanceStage moves an en_production order to the next production stage.
// Advancing past emballage is rejected; the order must be completed via a
// status change to terminee instead.
func (r *OrderRepo) AdvanceStage(ctx context.Context, id uint64) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var status, stage string
	err = tx.QueryRowContext(ctx,
		"SELECT status, stage FROM orders WHERE id=? FOR UPDATE", id).Scan(&status, &stage)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	if status != model.OrderStatusInProgress {
		return model.Order{}, ErrInvalidTransition
	}
	next, ok := nextStage(stage)
	if !ok {
		return model.Order{}, ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET stage=? WHERE id=?", next, id); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	return r.GetByID(ctx, id)
}

func transitionAllowed(current, next string) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

func nextStage(current string) (string, bool) {
	for i, s := range stageOrder {
		if s == current && i+1 < len(stageOrder) {
			return stageOrder[i+1], true
		}
	}
	return "", false
}

// DueSoon returns non-final orders whose due date falls within the window.
// Used by the dashboard.
func (r *OrderRepo) DueSoon(ctx context.Context, window time.Duration) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE status NOT IN (?,?) AND due_date <= ? ORDER BY due_date",
		model.OrderStatusDelivered, model.OrderStatusCancelled,
		time.Now().UTC().Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ClientName, &o.Description, &o.Quantity, &o.UnitCents,
			&o.Status, &o.Stage, &o.DueDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
