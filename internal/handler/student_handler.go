package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/teacher-admin-api/internal/dto"
	"github.com/noah-isme/teacher-admin-api/internal/models"
	"github.com/noah-isme/teacher-admin-api/pkg/response"
)

type teacherLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

type rosterService interface {
	Register(ctx context.Context, studentEmails []string, teacherID int64) error
	GetCommonStudents(ctx context.Context, teacherEmails []string) ([]string, error)
	Suspend(ctx context.Context, studentEmail string) error
}

type notificationService interface {
	Recipients(ctx context.Context, teacherEmail, text string) ([]string, error)
}

// StudentHandler exposes roster and notification endpoints.
type StudentHandler struct {
	teachers      teacherLookup
	roster        rosterService
	notifications notificationService
	validator     *validator.Validate
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(teachers teacherLookup, roster rosterService, notifications notificationService) *StudentHandler {
	return &StudentHandler{teachers: teachers, roster: roster, notifications: notifications, validator: validator.New()}
}

// Register godoc
// @Summary Register students under a teacher
// @Tags Students
// @Accept json
// @Param payload body dto.RegisterStudentsRequest true "Registration payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	teacher, err := h.teachers.GetByEmail(c.Request.Context(), req.Teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.roster.Register(c.Request.Context(), req.Students, teacher.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CommonStudents godoc
// @Summary List students common to all given teachers
// @Tags Students
// @Produce json
// @Param teacher query []string true "Teacher email" collectionFormat(multi)
// @Success 200 {object} response.Envelope{data=dto.CommonStudentsResponse}
// @Failure 400 {object} response.Envelope
// @Router /commonstudents [get]
func (h *StudentHandler) CommonStudents(c *gin.Context) {
	var teachers []string
	for _, raw := range c.QueryArray("teacher") {
		if email := strings.TrimSpace(raw); email != "" {
			teachers = append(teachers, email)
		}
	}
	if len(teachers) == 0 {
		response.Error(c, validationError(msgTeacherRequired))
		return
	}
	for _, email := range teachers {
		if err := h.validator.Var(email, "email"); err != nil {
			response.Error(c, validationError(msgTeacherInvalid))
			return
		}
	}

	students, err := h.roster.GetCommonStudents(c.Request.Context(), teachers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CommonStudentsResponse{Students: students})
}

// Suspend godoc
// @Summary Suspend a student
// @Tags Students
// @Accept json
// @Param payload body dto.SuspendStudentRequest true "Student to suspend"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suspend [post]
func (h *StudentHandler) Suspend(c *gin.Context) {
	var req dto.SuspendStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	if err := h.roster.Suspend(c.Request.Context(), req.Student); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RetrieveForNotifications godoc
// @Summary Resolve notification recipients
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.RetrieveNotificationsRequest true "Notification payload"
// @Success 200 {object} response.Envelope{data=dto.NotificationRecipientsResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /retrievefornotifications [post]
func (h *StudentHandler) RetrieveForNotifications(c *gin.Context) {
	var req dto.RetrieveNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	recipients, err := h.notifications.Recipients(c.Request.Context(), req.Teacher, req.Notification)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NotificationRecipientsResponse{Recipients: recipients})
}
