package models

import "time"

// RelationshipStatus enumerates teacher-student association states.
type RelationshipStatus int

const (
	RelationshipStatusInactive RelationshipStatus = 0
	RelationshipStatusActive   RelationshipStatus = 1
)

// String returns the status label.
func (s RelationshipStatus) String() string {
	if s == RelationshipStatusActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// TeacherStudentRelationship associates a student with a teacher. At most one row exists per pair.
type TeacherStudentRelationship struct {
	ID        int64              `db:"id" json:"id"`
	TeacherID int64              `db:"teacher_id" json:"teacher_id"`
	StudentID int64              `db:"student_id" json:"student_id"`
	Status    RelationshipStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time         `db:"updated_at" json:"updated_at,omitempty"`
}

// TeacherStudentEmail is one (teacher, student) pair projected to emails.
type TeacherStudentEmail struct {
	TeacherEmail string `db:"teacher_email"`
	StudentEmail string `db:"student_email"`
}

// RosterEntry describes a student on a teacher's roster for exports.
type RosterEntry struct {
	StudentEmail       string             `db:"student_email" json:"student_email"`
	StudentStatus      StudentStatus      `db:"student_status" json:"student_status"`
	RelationshipStatus RelationshipStatus `db:"relationship_status" json:"relationship_status"`
	RegisteredAt       time.Time          `db:"registered_at" json:"registered_at"`
	UpdatedAt          *time.Time         `db:"updated_at" json:"updated_at,omitempty"`
}
