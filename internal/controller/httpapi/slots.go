package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kotonoha-dev/booking_api/internal/model"
)

// seedDays на сколько дней вперёд сидируется дефолтная сетка
const seedDays = 14

// ListSlots отдаёт доступные окна записи на дату.
// Без параметра date возвращается пустой список, как в исходном API.
func (h *Handler) ListSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusOK, []*model.AvailableSlot{})
		return
	}

	slots, err := h.availability.ListAvailable(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// SeedSlots пересоздаёт слоты дефолтной сетки на две недели вперёд
func (h *Handler) SeedSlots(c *gin.Context) {
	created, err := h.availability.SeedDefaultSlots(c.Request.Context(), seedDays)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Seed completed",
		"created": created,
	})
}
