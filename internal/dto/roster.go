package dto

// RegisterStudentsRequest registers students under a teacher.
type RegisterStudentsRequest struct {
	Teacher  string   `json:"teacher" binding:"required,email"`
	Students []string `json:"students" binding:"required,min=1,dive,required,email"`
}

// SuspendStudentRequest suspends a student by email.
type SuspendStudentRequest struct {
	Student string `json:"student" binding:"required,email"`
}

// RetrieveNotificationsRequest carries the notification text of a teacher.
type RetrieveNotificationsRequest struct {
	Teacher      string `json:"teacher" binding:"required,email"`
	Notification string `json:"notification" binding:"required"`
}

// CommonStudentsResponse lists students shared by the queried teachers.
type CommonStudentsResponse struct {
	Students []string `json:"students"`
}

// NotificationRecipientsResponse lists who should receive a notification.
type NotificationRecipientsResponse struct {
	Recipients []string `json:"recipients"`
}
