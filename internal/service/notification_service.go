package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
	"github.com/noah-isme/teacher-admin-api/pkg/mention"
)

type teacherResolver interface {
	Get(ctx context.Context, id int64) (*models.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

type activeRosterReader interface {
	FindActiveRelationshipStudentEmails(ctx context.Context, teacherID int64) ([]string, error)
}

type studentStatusReader interface {
	FindByEmails(ctx context.Context, emails []string, status *models.StudentStatus) ([]models.Student, error)
}

// NotificationService resolves who receives a teacher's notification. It never writes.
type NotificationService struct {
	teachers teacherResolver
	roster   activeRosterReader
	students studentStatusReader
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(teachers teacherResolver, roster activeRosterReader, students studentStatusReader, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{teachers: teachers, roster: roster, students: students, metrics: metrics, logger: logger}
}

// GetStudentNotificationList returns the union of mentioned emails and the teacher's active
// roster, minus suspended students, sorted. The teacher must exist.
func (s *NotificationService) GetStudentNotificationList(ctx context.Context, teacherID int64, mentioned []string) ([]string, error) {
	if _, err := s.teachers.Get(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.resolve(ctx, teacherID, mentioned)
}

// Recipients resolves the teacher by email and the mentions embedded in text.
func (s *NotificationService) Recipients(ctx context.Context, teacherEmail, text string) ([]string, error) {
	teacher, err := s.teachers.GetByEmail(ctx, teacherEmail)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, teacher.ID, mention.Extract(text))
}

func (s *NotificationService) resolve(ctx context.Context, teacherID int64, mentioned []string) ([]string, error) {
	mentioned = uniqueSorted(mentioned)
	start := time.Now()

	var (
		roster    []string
		suspended []models.Student
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster.FindActiveRelationshipStudentEmails(gctx, teacherID)
		return err
	})
	if len(mentioned) > 0 {
		g.Go(func() error {
			status := models.StudentStatusSuspended
			var err error
			suspended, err = s.students.FindByEmails(gctx, mentioned, &status)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("resolve notification recipients failed", zap.Int64("teacher_id", teacherID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve notification recipients")
	}
	s.metrics.ObserveRosterOperation("notification_recipients", time.Since(start))

	excluded := make(map[string]struct{}, len(suspended))
	for _, student := range suspended {
		excluded[student.Email] = struct{}{}
	}

	recipients := make(map[string]struct{}, len(mentioned)+len(roster))
	for _, email := range mentioned {
		recipients[email] = struct{}{}
	}
	for _, email := range roster {
		recipients[email] = struct{}{}
	}

	result := make([]string, 0, len(recipients))
	for email := range recipients {
		if _, skip := excluded[email]; skip {
			continue
		}
		result = append(result, email)
	}
	sort.Strings(result)
	s.metrics.ObserveRecipients(len(result))
	return result, nil
}
