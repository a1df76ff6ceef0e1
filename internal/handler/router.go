package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Teachers *TeacherHandler
	Students *StudentHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the API under prefix and the operational endpoints at the root.
func RegisterRoutes(r gin.IRouter, prefix string, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	if h.Teachers != nil {
		api.POST("/teachers", h.Teachers.Create)
		api.GET("/roster/export", h.Teachers.ExportRoster)
		api.GET("/teachers/:id", h.Teachers.Get)
	}
	if h.Students != nil {
		api.POST("/register", h.Students.Register)
		api.GET("/commonstudents", h.Students.CommonStudents)
		api.POST("/suspend", h.Students.Suspend)
		api.POST("/retrievefornotifications", h.Students.RetrieveForNotifications)
	}
}
