package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
)

const (
	msgTeacherRequired     = "Teacher email is required."
	msgTeacherInvalid      = "Invalid teacher email format."
	msgStudentsRequired    = "Student email is required."
	msgStudentsInvalid     = "Invalid student(s) email format."
	msgStudentInvalid      = "Invalid student email format."
	msgNotificationMissing = "Notification is required."
)

// bindingError converts a gin binding failure into a user facing validation error.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrMalformedJSON.Code, appErrors.ErrMalformedJSON.Status, appErrors.ErrMalformedJSON.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	required := fe.Tag() == "required" || fe.Tag() == "min"
	switch {
	case field == "Teacher":
		if required {
			return msgTeacherRequired
		}
		return msgTeacherInvalid
	case strings.HasPrefix(field, "Students["):
		return msgStudentsInvalid
	case field == "Students":
		return msgStudentsRequired
	case field == "Student":
		if required {
			return msgStudentsRequired
		}
		return msgStudentInvalid
	case field == "Notification":
		return msgNotificationMissing
	}
	return appErrors.ErrValidation.Message
}

func validationError(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}
