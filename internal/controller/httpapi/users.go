package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMe отдаёт профиль текущего пользователя
// (уже созданного middleware при первом запросе)
func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateMe обновляет профиль текущего пользователя
func (h *Handler) UpdateMe(c *gin.Context) {
	user := currentUser(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.DisplayName, req.Email, req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
