package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

// EmployeeRepo encapsulates all database queries related to personnel.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeColumns = "id,first_name,last_name,position,hourly_wage_cents,hired_at,is_active,created_at,updated_at"

// Create inserts an employee and returns its ID.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (first_name, last_name, position, hourly_wage_cents, hired_at) VALUES (?,?,?,?,?)",
		e.FirstName, e.LastName, e.Position, e.HourlyWageCents, e.HiredAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one employee.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.HourlyWageCents,
			&e.HiredAt, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	return e, err
}

// List returns employees; inactive ones are included only when all is true.
func (r *EmployeeRepo) List(ctx context.Context, all bool) ([]model.Employee, error) {
	q := "SELECT " + employeeColumns + " FROM employees"
	if !all {
		q += " WHERE is_active=1"
	}
	q += " ORDER BY last_name, first_name"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.HourlyWageCents,
			&e.HiredAt, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites an employee's editable fields.
func (r *EmployeeRepo) Update(ctx context.Context, id uint64, firstName, lastName, position string, wageCents int64, hiredAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE employees SET first_name=?, last_name=?, position=?, hourly_wage_cents=?, hired_at=? WHERE id=?",
		firstName, lastName, position, wageCents, hiredAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes an employee; the row stays for payroll history.
func (r *EmployeeRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE employees SET is_active=0 WHERE id=? AND is_active=1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
