package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
	"github.com/noah-isme/teacher-admin-api/pkg/export"
)

type rosterLister interface {
	ListRoster(ctx context.Context, teacherID int64) ([]models.RosterEntry, error)
}

type teacherEmailLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

// RosterExport is a rendered roster attachment.
type RosterExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// RosterExportService renders a teacher's roster as CSV or PDF.
type RosterExportService struct {
	teachers teacherEmailLookup
	roster   rosterLister
	logger   *zap.Logger
	now      func() time.Time
}

// NewRosterExportService constructs a RosterExportService.
func NewRosterExportService(teachers teacherEmailLookup, roster rosterLister, logger *zap.Logger) *RosterExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterExportService{teachers: teachers, roster: roster, logger: logger, now: time.Now}
}

// Export lists every student ever registered under the teacher with current statuses.
func (s *RosterExportService) Export(ctx context.Context, teacherEmail string, format export.Format) (*RosterExport, error) {
	teacher, err := s.teachers.GetByEmail(ctx, teacherEmail)
	if err != nil {
		return nil, err
	}

	entries, err := s.roster.ListRoster(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{
		Title:   "Roster of " + teacher.Email,
		Headers: []string{"Student Email", "Student Status", "Relationship Status", "Registered At"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, []string{
			entry.StudentEmail,
			entry.StudentStatus.String(),
			entry.RelationshipStatus.String(),
			entry.RegisteredAt.UTC().Format(time.RFC3339),
		})
	}

	payload, err := export.Render(dataset, format)
	if err != nil {
		s.logger.Error("render roster export failed", zap.Int64("teacher_id", teacher.ID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	return &RosterExport{
		Filename:    fmt.Sprintf("roster-%d-%s.%s", teacher.ID, s.now().UTC().Format("20060102"), strings.ToLower(string(format))),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}
