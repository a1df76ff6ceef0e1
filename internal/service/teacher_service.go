package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	"github.com/noah-isme/teacher-admin-api/internal/repository"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
)

const (
	msgTeacherExists   = "Teacher is existed."
	msgTeacherNotFound = "Teacher does not exist."

	teacherCachePrefix = "teacher:email:"
)

type teacherRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	Email string `json:"teacher_email" validate:"required,email"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTeacherService constructs a TeacherService. cache may be nil.
func NewTeacherService(repo teacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Create registers a new ACTIVE teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, teacherEmailMessage(err))
	}

	teacher, err := s.repo.Create(ctx, nil, req.Email, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Info("teacher already exists", zap.String("email", req.Email))
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, msgTeacherExists)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// GetByEmail resolves a teacher by exact email. Hits are served from cache when enabled.
func (s *TeacherService) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	key := teacherCachePrefix + email
	var cached models.Teacher
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	teacher, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgTeacherNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	_ = s.cache.Set(ctx, key, teacher, 0)
	return teacher, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgTeacherNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

func teacherEmailMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		return "Teacher email is required."
	}
	return "Invalid teacher email format."
}
