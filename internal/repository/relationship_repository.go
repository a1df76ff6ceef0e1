package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/teacher-admin-api/internal/models"
)

// RelationshipRepository maintains teacher-student associations.
type RelationshipRepository struct {
	db *sqlx.DB
}

// NewRelationshipRepository constructs a RelationshipRepository.
func NewRelationshipRepository(db *sqlx.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// UpsertActive creates the (teacher, student) row as ACTIVE or reactivates the existing one.
// An unknown teacher or student yields ErrForeignKey.
func (r *RelationshipRepository) UpsertActive(ctx context.Context, exec sqlx.ExtContext, teacherID, studentID int64, now time.Time) error {
	const query = `INSERT INTO teacher_student_relationships (teacher_id, student_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (teacher_id, student_id) DO UPDATE
SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := executor(r.db, exec).ExecContext(ctx, query, teacherID, studentID, models.RelationshipStatusActive, now); err != nil {
		return fmt.Errorf("upsert relationship: %w", classify(err))
	}
	return nil
}

// DeactivateAllForStudent marks every relationship of the student INACTIVE.
func (r *RelationshipRepository) DeactivateAllForStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64, now time.Time) (int64, error) {
	const query = `UPDATE teacher_student_relationships SET status = $2, updated_at = $3 WHERE student_id = $1`
	res, err := executor(r.db, exec).ExecContext(ctx, query, studentID, models.RelationshipStatusInactive, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate relationships: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate relationships rows affected: %w", err)
	}
	return affected, nil
}

// FindStudentEmailsForTeachers returns (teacher, student) email pairs for the ACTIVE teachers
// among teacherEmails. Relationship status is only filtered when activeOnly is set.
func (r *RelationshipRepository) FindStudentEmailsForTeachers(ctx context.Context, teacherEmails []string, activeOnly bool) ([]models.TeacherStudentEmail, error) {
	if len(teacherEmails) == 0 {
		return nil, nil
	}
	query := `SELECT t.email AS teacher_email, s.email AS student_email
FROM teacher_student_relationships r
JOIN teachers t ON t.id = r.teacher_id
JOIN students s ON s.id = r.student_id
WHERE t.email = ANY($1) AND t.status = $2`
	args := []interface{}{pq.Array(teacherEmails), models.TeacherStatusActive}
	if activeOnly {
		query += " AND r.status = $3"
		args = append(args, models.RelationshipStatusActive)
	}

	var pairs []models.TeacherStudentEmail
	if err := r.db.SelectContext(ctx, &pairs, query, args...); err != nil {
		return nil, fmt.Errorf("find student emails for teachers: %w", err)
	}
	return pairs, nil
}

// FindActiveRelationshipStudentEmails returns emails of ACTIVE students holding an ACTIVE
// relationship with the teacher.
func (r *RelationshipRepository) FindActiveRelationshipStudentEmails(ctx context.Context, teacherID int64) ([]string, error) {
	const query = `SELECT s.email
FROM teacher_student_relationships r
JOIN students s ON s.id = r.student_id
WHERE r.teacher_id = $1 AND r.status = $2 AND s.status = $3
ORDER BY s.email ASC`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, teacherID, models.RelationshipStatusActive, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("find active roster emails: %w", err)
	}
	return emails, nil
}

// ListRoster returns every student ever registered under the teacher.
func (r *RelationshipRepository) ListRoster(ctx context.Context, teacherID int64) ([]models.RosterEntry, error) {
	const query = `SELECT s.email AS student_email, s.status AS student_status, r.status AS relationship_status,
       r.created_at AS registered_at, r.updated_at
FROM teacher_student_relationships r
JOIN students s ON s.id = r.student_id
WHERE r.teacher_id = $1
ORDER BY s.email ASC`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}
