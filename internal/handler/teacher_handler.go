package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	"github.com/noah-isme/teacher-admin-api/internal/service"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
	"github.com/noah-isme/teacher-admin-api/pkg/export"
	"github.com/noah-isme/teacher-admin-api/pkg/response"
)

type teacherService interface {
	Create(ctx context.Context, req service.CreateTeacherRequest) (*models.Teacher, error)
	Get(ctx context.Context, id int64) (*models.Teacher, error)
}

type rosterExporter interface {
	Export(ctx context.Context, teacherEmail string, format export.Format) (*service.RosterExport, error)
}

// TeacherHandler wires teacher services to HTTP routes.
type TeacherHandler struct {
	teachers  teacherService
	exports   rosterExporter
	validator *validator.Validate
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers teacherService, exports rosterExporter) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, exports: exports, validator: validator.New()}
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedJSON.Code, appErrors.ErrMalformedJSON.Status, appErrors.ErrMalformedJSON.Message))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, validationError("Teacher id must be numeric."))
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// ExportRoster godoc
// @Summary Export a teacher's roster
// @Tags Teachers
// @Produce text/csv
// @Produce application/pdf
// @Param teacher query string true "Teacher email"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roster/export [get]
func (h *TeacherHandler) ExportRoster(c *gin.Context) {
	teacher := strings.TrimSpace(c.Query("teacher"))
	if teacher == "" {
		response.Error(c, validationError(msgTeacherRequired))
		return
	}
	if err := h.validator.Var(teacher, "email"); err != nil {
		response.Error(c, validationError(msgTeacherInvalid))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, validationError("Export format must be csv or pdf."))
		return
	}

	out, err := h.exports.Export(c.Request.Context(), teacher, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, out.Filename, out.ContentType, out.Payload)
}
