package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-admin-api/internal/models"
)

const teacherColumns = "id, email, status, created_at, updated_at"

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create inserts an ACTIVE teacher. An existing email yields ErrDuplicate.
func (r *TeacherRepository) Create(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (*models.Teacher, error) {
	const query = `INSERT INTO teachers (email, status, created_at) VALUES ($1, $2, $3)
ON CONFLICT (email) DO NOTHING
RETURNING ` + teacherColumns
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &teacher, query, email, models.TeacherStatusActive, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("create teacher %s: %w", email, ErrDuplicate)
		}
		return nil, fmt.Errorf("create teacher: %w", classify(err))
	}
	return &teacher, nil
}

// FindByEmail fetches a teacher by exact email. Absence is reported as sql.ErrNoRows.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	const query = `SELECT ` + teacherColumns + ` FROM teachers WHERE email = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, email); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByID fetches a teacher by ID. Absence is reported as sql.ErrNoRows.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	const query = `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}
