package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	appErrors "github.com/noah-isme/teacher-admin-api/pkg/errors"
)

func newNotificationFixture(t *testing.T) (*memStore, *RosterService, *NotificationService, *models.Teacher) {
	store, roster, mock := newRosterFixture(t, RosterServiceConfig{})
	teacher := store.addTeacher("ken@school.test", models.TeacherStatusActive)
	expectCommitted(mock, 2)
	require.NoError(t, roster.Register(context.Background(), []string{"s1@school.test", "s2@school.test"}, teacher.ID))
	require.NoError(t, roster.Suspend(context.Background(), "s2@school.test"))

	teachers := NewTeacherService(teacherRepoView{store}, nil, nil, nil)
	notifications := NewNotificationService(teachers, store, store, NewMetricsService(), zap.NewNop())
	return store, roster, notifications, teacher
}

func TestNotificationServiceExcludesSuspended(t *testing.T) {
	_, _, svc, teacher := newNotificationFixture(t)

	got, err := svc.GetStudentNotificationList(context.Background(), teacher.ID, []string{"s2@school.test", "s3@school.test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1@school.test", "s3@school.test"}, got)
}

func TestNotificationServiceWithoutMentions(t *testing.T) {
	_, _, svc, teacher := newNotificationFixture(t)

	got, err := svc.GetStudentNotificationList(context.Background(), teacher.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1@school.test"}, got)
}

func TestNotificationServiceUnknownTeacher(t *testing.T) {
	store, _, svc, _ := newNotificationFixture(t)
	calls := store.rosterCalls

	_, err := svc.GetStudentNotificationList(context.Background(), 999, []string{"s3@school.test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, calls, store.rosterCalls, "no union is computed for an unknown teacher")
}

func TestNotificationServiceRecipientsFromText(t *testing.T) {
	_, _, svc, _ := newNotificationFixture(t)

	got, err := svc.Recipients(context.Background(), "ken@school.test",
		"Hello students! @s3@school.test @s2@school.test and again s3@school.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1@school.test", "s3@school.test"}, got)

	_, err = svc.Recipients(context.Background(), "ghost@school.test", "hi")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestNotificationServiceRosterFailure(t *testing.T) {
	store, _, svc, teacher := newNotificationFixture(t)
	store.rosterErr = errors.New("read timeout")

	_, err := svc.GetStudentNotificationList(context.Background(), teacher.ID, []string{"s3@school.test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
