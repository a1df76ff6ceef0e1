package models

import "time"

// StudentStatus enumerates student lifecycle states. ACTIVE -> SUSPENDED is one-way.
type StudentStatus int

const (
	StudentStatusInactive  StudentStatus = 0
	StudentStatusActive    StudentStatus = 1
	StudentStatusSuspended StudentStatus = 2
)

// String returns the status label.
func (s StudentStatus) String() string {
	switch s {
	case StudentStatusActive:
		return "ACTIVE"
	case StudentStatusSuspended:
		return "SUSPENDED"
	default:
		return "INACTIVE"
	}
}

// Student represents a learner, created on first registration under any teacher.
type Student struct {
	ID          int64         `db:"id" json:"id"`
	Email       string        `db:"email" json:"email"`
	Status      StudentStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
	SuspendedAt *time.Time    `db:"suspended_at" json:"suspended_at,omitempty"`
}

// Suspended reports whether the student has been suspended.
func (s Student) Suspended() bool {
	return s.Status == StudentStatusSuspended
}
