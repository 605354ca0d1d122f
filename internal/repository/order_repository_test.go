package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

func newOrderMock(t *testing.T) (*OrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrderRepo(db), mock
}

func orderRow(id uint64, status, stage string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "client_name", "description", "quantity", "unit_cents",
		"status", "stage", "due_date", "created_by", "created_at", "updated_at",
	}).AddRow(id, "Lycee Ampefiloha", "200 t-shirts logo", 200, 1500,
		status, stage, now.Add(72*time.Hour), 3, now, now)
}

func TestOrderRepo_UpdateStatus_EnteringProductionSetsFirstStage(t *testing.T) {
	repo, mock := newOrderMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id=? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.OrderStatusReceived))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status=?, stage=? WHERE id=?")).
		WithArgs(model.OrderStatusInProgress, model.StagePrinting, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1")).
		WithArgs(uint64(5)).
		WillReturnRows(orderRow(5, model.OrderStatusInProgress, model.StagePrinting))

	o, err := repo.UpdateStatus(context.Background(), 5, model.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProgress, o.Status)
	assert.Equal(t, model.StagePrinting, o.Stage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatus_InvalidTransitionRollsBack(t *testing.T) {
	repo, mock := newOrderMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id=? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(model.OrderStatusDelivered))
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(context.Background(), 5, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition, "livree is terminal, even annulee is refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatus_UnknownTargetRejectedBeforeTx(t *testing.T) {
	repo, mock := newOrderMock(t)

	_, err := repo.UpdateStatus(context.Background(), 5, "expediee")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet(), "no transaction should have started")
}

func TestOrderRepo_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newOrderMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id=? FOR UPDATE")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(context.Background(), 99, model.OrderStatusInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_AdvanceStage(t *testing.T) {
	repo, mock := newOrderMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, stage FROM orders WHERE id=? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "stage"}).
			AddRow(model.OrderStatusInProgress, model.StagePrinting))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET stage=? WHERE id=?")).
		WithArgs(model.StageDrying, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1")).
		WithArgs(uint64(5)).
		WillReturnRows(orderRow(5, model.OrderStatusInProgress, model.StageDrying))

	o, err := repo.AdvanceStage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.StageDrying, o.Stage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_AdvanceStage_PastPackagingRejected(t *testing.T) {
	repo, mock := newOrderMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, stage FROM orders WHERE id=? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "stage"}).
			AddRow(model.OrderStatusInProgress, model.StagePackaging))
	mock.ExpectRollback()

	_, err := repo.AdvanceStage(context.Background(), 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.OrderStatusReceived, model.OrderStatusInProgress, true},
		{model.OrderStatusReceived, model.OrderStatusDone, false},
		{model.OrderStatusInProgress, model.OrderStatusDone, true},
		{model.OrderStatusDone, model.OrderStatusDelivered, true},
		{model.OrderStatusDone, model.OrderStatusReceived, false},
		{model.OrderStatusReceived, model.OrderStatusCancelled, true},
		{model.OrderStatusDelivered, model.OrderStatusCancelled, false},
		{model.OrderStatusCancelled, model.OrderStatusReceived, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestNextStage(t *testing.T) {
	got, ok := nextStage(model.StagePrinting)
	assert.True(t, ok)
	assert.Equal(t, model.StageDrying, got)

	got, ok = nextStage(model.StageControl)
	assert.True(t, ok)
	assert.Equal(t, model.StagePackaging, got)

	_, ok = nextStage(model.StagePackaging)
	assert.False(t, ok)
	_, ok = nextStage("")
	assert.False(t, ok)
}
