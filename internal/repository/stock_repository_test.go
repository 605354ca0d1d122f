package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

func newStockMock(t *testing.T) (*StockRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStockRepo(db), mock
}

func stockItemRow(id uint64, qty int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "reference", "label", "unit", "quantity", "created_at", "updated_at"}).
		AddRow(id, "TSH-BLANC-M", "T-shirt blanc M", "piece", qty, now, now)
}

func TestStockRepo_CreateItem_Duplicate(t *testing.T) {
	repo, mock := newStockMock(t)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO stock_items (reference, label, unit, quantity) VALUES (?,?,?,0)")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'TSH-BLANC-M' for key 'stock_items.reference'"))

	_, err := repo.CreateItem(context.Background(), &model.StockItem{
		Reference: "TSH-BLANC-M", Label: "T-shirt blanc M", Unit: "piece",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_RecordMovement_Entree(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM stock_items WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO stock_movements (item_id, direction, quantity, reason, created_by) VALUES (?,?,?,?,?)")).
		WithArgs(uint64(3), model.MovementIn, int64(25), "livraison fournisseur", uint64(7)).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock_items SET quantity=quantity+? WHERE id=?")).
		WithArgs(int64(25), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,reference,label,unit,quantity,created_at,updated_at FROM stock_items WHERE id=? LIMIT 1")).
		WithArgs(uint64(3)).
		WillReturnRows(stockItemRow(3, 35))

	m := &model.StockMovement{ItemID: 3, Direction: model.MovementIn, Quantity: 25, Reason: "livraison fournisseur", CreatedBy: 7}
	item, err := repo.RecordMovement(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(35), item.Quantity)
	assert.Equal(t, uint64(41), m.ID, "movement id is written back for the event payload")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_RecordMovement_SortieInsufficient(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM stock_items WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))
	mock.ExpectRollback()

	_, err := repo.RecordMovement(context.Background(), &model.StockMovement{
		ItemID: 3, Direction: model.MovementOut, Quantity: 5, CreatedBy: 7,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock, "quantity must never go negative")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_RecordMovement_SortieApplied(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM stock_items WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO stock_movements (item_id, direction, quantity, reason, created_by) VALUES (?,?,?,?,?)")).
		WithArgs(uint64(3), model.MovementOut, int64(10), "production commande 5", uint64(7)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock_items SET quantity=quantity+? WHERE id=?")).
		WithArgs(int64(-10), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,reference,label,unit,quantity,created_at,updated_at FROM stock_items WHERE id=? LIMIT 1")).
		WithArgs(uint64(3)).
		WillReturnRows(stockItemRow(3, 0))

	// Taking the exact quantity on hand is allowed; zero is not negative.
	item, err := repo.RecordMovement(context.Background(), &model.StockMovement{
		ItemID: 3, Direction: model.MovementOut, Quantity: 10, Reason: "production commande 5", CreatedBy: 7,
	})
	require.NoError(t, err)
	assert.Zero(t, item.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_RecordMovement_RejectsBadInput(t *testing.T) {
	repo, mock := newStockMock(t)

	_, err := repo.RecordMovement(context.Background(), &model.StockMovement{
		ItemID: 3, Direction: model.MovementOut, Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = repo.RecordMovement(context.Background(), &model.StockMovement{
		ItemID: 3, Direction: "transfert", Quantity: 5,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, mock.ExpectationsWereMet(), "validation failures must not touch the database")
}
