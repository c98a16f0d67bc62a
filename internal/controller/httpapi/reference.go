package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotonoha-dev/booking_api/internal/model"
)

// ListTeachers отдаёт активных преподавателей
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.reference.Teachers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if teachers == nil {
		teachers = []*model.Teacher{}
	}
	c.JSON(http.StatusOK, teachers)
}

// ListSubjects отдаёт активные предметы
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.reference.Subjects(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if subjects == nil {
		subjects = []*model.Subject{}
	}
	c.JSON(http.StatusOK, subjects)
}
