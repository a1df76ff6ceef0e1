package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/teacher-admin-api/internal/models"
)

const studentColumns = "id, email, status, created_at, updated_at, suspended_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindOrCreate returns the student with the given email, inserting an ACTIVE row when absent.
// The insert never raises a unique violation: a concurrent writer that wins the race makes the
// insert a no-op and the existing row is re-selected. created reports whether this call inserted.
func (r *StudentRepository) FindOrCreate(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (student *models.Student, created bool, err error) {
	target := executor(r.db, exec)

	const insertQuery = `INSERT INTO students (email, status, created_at) VALUES ($1, $2, $3)
ON CONFLICT (email) DO NOTHING
RETURNING ` + studentColumns
	var row models.Student
	err = sqlx.GetContext(ctx, target, &row, insertQuery, email, models.StudentStatusActive, now)
	if err == nil {
		return &row, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("insert student: %w", classify(err))
	}

	const selectQuery = `SELECT ` + studentColumns + ` FROM students WHERE email = $1`
	if err = sqlx.GetContext(ctx, target, &row, selectQuery, email); err != nil {
		return nil, false, fmt.Errorf("reselect student %s: %w", email, err)
	}
	return &row, false, nil
}

// FindByEmail fetches a student by exact email. When exec is a transaction and forUpdate is set
// the row stays locked until the transaction ends. Absence is reported as sql.ErrNoRows.
func (r *StudentRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string, forUpdate bool) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var student models.Student
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmails returns the students among emails, optionally restricted to a status.
func (r *StudentRepository) FindByEmails(ctx context.Context, emails []string, status *models.StudentStatus) ([]models.Student, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = ANY($1)`
	args := []interface{}{pq.Array(emails)}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY email ASC"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("find students by emails: %w", err)
	}
	return students, nil
}

// SetSuspended moves a student to SUSPENDED. A student already suspended yields ErrInvalidTransition.
func (r *StudentRepository) SetSuspended(ctx context.Context, exec sqlx.ExtContext, id int64, now time.Time) error {
	const query = `UPDATE students SET status = $2, suspended_at = $3, updated_at = $3 WHERE id = $1 AND status <> $2`
	res, err := executor(r.db, exec).ExecContext(ctx, query, id, models.StudentStatusSuspended, now)
	if err != nil {
		return fmt.Errorf("suspend student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("suspend student rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("suspend student %d: %w", id, ErrInvalidTransition)
	}
	return nil
}
