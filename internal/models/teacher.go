package models

import "time"

// TeacherStatus enumerates teacher account states.
type TeacherStatus int

const (
	TeacherStatusInactive TeacherStatus = 0
	TeacherStatusActive   TeacherStatus = 1
)

// String returns the status label.
func (s TeacherStatus) String() string {
	if s == TeacherStatusActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// Teacher represents an instructor identified by a unique email.
type Teacher struct {
	ID        int64         `db:"id" json:"id"`
	Email     string        `db:"email" json:"email"`
	Status    TeacherStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

// Active reports whether the teacher may contribute to roster queries.
func (t Teacher) Active() bool {
	return t.Status == TeacherStatusActive
}
