package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	"github.com/noah-isme/teacher-admin-api/internal/repository"
	"github.com/noah-isme/teacher-admin-api/pkg/database"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
)

const (
	msgStudentNotFound  = "Student does not exist."
	msgStudentSuspended = "Student was in suspended status."

	commonStudentsScope = "roster:common"
)

type studentRepository interface {
	FindOrCreate(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (*models.Student, bool, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string, forUpdate bool) (*models.Student, error)
	SetSuspended(ctx context.Context, exec sqlx.ExtContext, id int64, now time.Time) error
}

type relationshipRepository interface {
	UpsertActive(ctx context.Context, exec sqlx.ExtContext, teacherID, studentID int64, now time.Time) error
	DeactivateAllForStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64, now time.Time) (int64, error)
	FindStudentEmailsForTeachers(ctx context.Context, teacherEmails []string, activeOnly bool) ([]models.TeacherStudentEmail, error)
}

// RosterServiceConfig tunes roster query semantics.
type RosterServiceConfig struct {
	// CommonStudentsActiveOnly ignores INACTIVE relationships when intersecting rosters.
	CommonStudentsActiveOnly bool
}

// RosterService owns every write to students and relationships.
type RosterService struct {
	tx            database.TxProvider
	students      studentRepository
	relationships relationshipRepository
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	activeOnly    bool
	now           func() time.Time
}

// NewRosterService constructs a RosterService. cache and metrics may be nil.
func NewRosterService(
	tx database.TxProvider,
	students studentRepository,
	relationships relationshipRepository,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg RosterServiceConfig,
) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		tx:            tx,
		students:      students,
		relationships: relationships,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		activeOnly:    cfg.CommonStudentsActiveOnly,
		now:           time.Now,
	}
}

// Register finds or creates each student and activates its relationship with the teacher.
// The batch commits as a whole or not at all. An unknown teacher id yields NotFound.
func (s *RosterService) Register(ctx context.Context, studentEmails []string, teacherID int64) error {
	emails := uniqueSorted(studentEmails)
	if len(emails) == 0 {
		return nil
	}

	start := time.Now()
	now := s.now().UTC()
	err := database.RunInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		for _, email := range emails {
			student, _, err := s.students.FindOrCreate(ctx, tx, email, now)
			if err != nil {
				return err
			}
			if err := s.relationships.UpsertActive(ctx, tx, teacherID, student.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.ObserveRosterOperation("register", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			s.logger.Info("register under unknown teacher", zap.Int64("teacher_id", teacherID))
			return appErrors.Clone(appErrors.ErrNotFound, msgTeacherNotFound)
		}
		s.logger.Error("register students failed", zap.Int64("teacher_id", teacherID), zap.Int("students", len(emails)), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register students")
	}

	s.metrics.AddRegistrations(len(emails))
	s.invalidateCommonStudents(ctx)
	return nil
}

// GetCommonStudents returns, sorted, the student emails registered under every listed teacher.
// Inactive or unknown teachers contribute no students.
func (s *RosterService) GetCommonStudents(ctx context.Context, teacherEmails []string) ([]string, error) {
	teachers := uniqueSorted(teacherEmails)
	if len(teachers) == 0 {
		return []string{}, nil
	}

	gen, cacheable := s.cache.Generation(ctx, commonStudentsScope)
	key := fmt.Sprintf("%s:g%d:%s", commonStudentsScope, gen, strings.Join(teachers, ","))
	if cacheable {
		var cached []string
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	start := time.Now()
	pairs, err := s.relationships.FindStudentEmailsForTeachers(ctx, teachers, s.activeOnly)
	s.metrics.ObserveRosterOperation("common_students", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load common students")
	}

	result := intersectRosters(pairs, len(teachers))
	if cacheable {
		_ = s.cache.Set(ctx, key, result, 0)
	}
	return result, nil
}

// Suspend moves the student to SUSPENDED and deactivates all of its relationships in one transaction.
func (s *RosterService) Suspend(ctx context.Context, studentEmail string) error {
	start := time.Now()
	now := s.now().UTC()
	var deactivated int64
	err := database.RunInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		student, err := s.students.FindByEmail(ctx, tx, studentEmail, true)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
			}
			return err
		}
		if student.Suspended() {
			return appErrors.Clone(appErrors.ErrAlreadySuspended, msgStudentSuspended)
		}
		if err := s.students.SetSuspended(ctx, tx, student.ID, now); err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				return appErrors.Clone(appErrors.ErrAlreadySuspended, msgStudentSuspended)
			}
			return err
		}
		deactivated, err = s.relationships.DeactivateAllForStudent(ctx, tx, student.ID, now)
		return err
	})
	s.metrics.ObserveRosterOperation("suspend", time.Since(start))
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Benign() {
			s.logger.Info("suspend rejected", zap.String("email", studentEmail), zap.String("reason", appErr.Code))
			return appErr
		}
		s.logger.Error("suspend student failed", zap.String("email", studentEmail), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to suspend student")
	}

	s.logger.Info("student suspended", zap.String("email", studentEmail), zap.Int64("relationships_deactivated", deactivated))
	s.metrics.IncSuspensions()
	s.invalidateCommonStudents(ctx)
	return nil
}

func (s *RosterService) invalidateCommonStudents(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, commonStudentsScope); err != nil {
		s.logger.Warn("common students cache left stale", zap.Error(err))
	}
}

// intersectRosters keeps the student emails paired with required distinct teachers.
func intersectRosters(pairs []models.TeacherStudentEmail, required int) []string {
	seen := make(map[models.TeacherStudentEmail]struct{}, len(pairs))
	counts := make(map[string]int)
	for _, pair := range pairs {
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		counts[pair.StudentEmail]++
	}

	result := make([]string, 0, len(counts))
	for email, n := range counts {
		if n == required {
			result = append(result, email)
		}
	}
	sort.Strings(result)
	return result
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
