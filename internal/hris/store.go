// internal/hris/store.go

// Package hris is the PostgreSQL-backed employee record store. It expects
// the following tables:
//
//	employees         (employee_id PK, full_name, email, department, job_title)
//	employee_fields   (employee_id, field, value, updated_at, PK (employee_id, field))
//	hris_writes       (idempotency_key PK, employee_id, field, value, applied_at)
//	salary_statements (employee_id, pay_period, gross_pay, net_pay, currency, paid_on,
//	                   PK (employee_id, pay_period))
//
// hris_writes is the idempotency ledger: every applied write claims its key
// there first, inside the same transaction as the field update.
package hris

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ==========================
// Sentinels
// ==========================

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrFieldNotWritable = errors.New("field not writable")
	ErrPayslipNotFound  = errors.New("payslip not found")
)

// writableFields is the closed set of record fields requesters may change
// through the pipeline. Everything else is read-only here and goes through
// HR operations.
var writableFields = map[string]bool{
	"first_name":        true,
	"last_name":         true,
	"address":           true,
	"phone":             true,
	"email":             true,
	"bank_account":      true,
	"emergency_contact": true,
	"marital_status":    true,
}

// IsWritable reports whether the pipeline may change the field.
func IsWritable(field string) bool {
	return writableFields[field]
}

// ==========================
// Models
// ==========================

// Profile is the employee directory row used for letter rendering and
// delivery.
type Profile struct {
	EmployeeID string
	FullName   string
	Email      string
	Department string
	JobTitle   string
}

// PayslipRow is one salary statement. Amounts stay strings end to end;
// the store never does arithmetic on them.
type PayslipRow struct {
	EmployeeID string
	PayPeriod  string
	GrossPay   string
	NetPay     string
	Currency   string
	PaidOn     string
}

// ==========================
// Store
// ==========================

// Store reads and writes employee records. All methods honor ctx deadlines
// through the database/sql context variants; callers classify timeouts.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Read returns the value of one record field. ErrEmployeeNotFound and
// ErrFieldNotFound distinguish an unknown employee from a known employee
// without the field.
func (s *Store) Read(ctx context.Context, employeeID, field string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM employee_fields WHERE employee_id = $1 AND field = $2`,
		employeeID, field,
	).Scan(&value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read %s for %s: %w", field, employeeID, err)
	}

	exists, err := s.employeeExists(ctx, s.db, employeeID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
	}
	return "", fmt.Errorf("field %s for %s: %w", field, employeeID, ErrFieldNotFound)
}

// Write applies one record field change exactly once per idempotency key.
// The key is claimed in hris_writes with ON CONFLICT DO NOTHING inside the
// same transaction as the field update: a replayed key observes the
// conflict and returns success without touching the record again.
func (s *Store) Write(ctx context.Context, employeeID, field, value, idempotencyKey string) error {
	if !IsWritable(field) {
		return fmt.Errorf("field %s: %w", field, ErrFieldNotWritable)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write for %s: %w", employeeID, err)
	}
	defer tx.Rollback()

	exists, err := s.employeeExists(ctx, tx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO hris_writes (idempotency_key, employee_id, field, value, applied_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (idempotency_key) DO NOTHING`,
		idempotencyKey, employeeID, field, value,
	)
	if err != nil {
		return fmt.Errorf("claim write key %s: %w", idempotencyKey, err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim write key %s: %w", idempotencyKey, err)
	}
	if claimed == 0 {
		// Already applied by an earlier attempt.
		return tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO employee_fields (employee_id, field, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (employee_id, field) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		employeeID, field, value,
	)
	if err != nil {
		return fmt.Errorf("apply %s for %s: %w", field, employeeID, err)
	}
	return tx.Commit()
}

// Profile returns the directory row for an employee.
func (s *Store) Profile(ctx context.Context, employeeID string) (Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT employee_id, full_name, email, department, job_title
		 FROM employees WHERE employee_id = $1`,
		employeeID,
	).Scan(&p.EmployeeID, &p.FullName, &p.Email, &p.Department, &p.JobTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile for %s: %w", employeeID, err)
	}
	return p, nil
}

// Payslip returns the salary statement for one pay period.
func (s *Store) Payslip(ctx context.Context, employeeID, payPeriod string) (PayslipRow, error) {
	var row PayslipRow
	err := s.db.QueryRowContext(ctx,
		`SELECT employee_id, pay_period, gross_pay, net_pay, currency, paid_on
		 FROM salary_statements WHERE employee_id = $1 AND pay_period = $2`,
		employeeID, payPeriod,
	).Scan(&row.EmployeeID, &row.PayPeriod, &row.GrossPay, &row.NetPay, &row.Currency, &row.PaidOn)
	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := s.employeeExists(ctx, s.db, employeeID)
		if existsErr != nil {
			return PayslipRow{}, existsErr
		}
		if !exists {
			return PayslipRow{}, fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
		}
		return PayslipRow{}, fmt.Errorf("period %s for %s: %w", payPeriod, employeeID, ErrPayslipNotFound)
	}
	if err != nil {
		return PayslipRow{}, fmt.Errorf("payslip %s for %s: %w", payPeriod, employeeID, err)
	}
	return row, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) employeeExists(ctx context.Context, q querier, employeeID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE employee_id = $1)`,
		employeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup employee %s: %w", employeeID, err)
	}
	return exists, nil
}
