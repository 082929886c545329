package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the exam planning API on group.
func RegisterRoutes(group *gin.RouterGroup, plan *ExamPlanHandler, exams *ExamHandler, metrics *MetricsHandler) {
	departments := group.Group("/departments/:departmentId/exams")
	departments.GET("", plan.List)
	departments.DELETE("", plan.Clear)
	departments.POST("/schedule", plan.Generate)
	departments.GET("/status", plan.Status)
	departments.GET("/slots", plan.Slots)
	departments.GET("/conflicts", plan.Conflicts)
	departments.POST("/rooms", plan.AssignRooms)

	group.PUT("/exams/:id", exams.Update)
	group.GET("/exams/:id/seating", exams.Seating)

	group.GET("/system/metrics", metrics.Summary)
}
