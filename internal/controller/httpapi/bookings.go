package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListBookings отдаёт бронирования текущего пользователя, новые в начале
func (h *Handler) ListBookings(c *gin.Context) {
	user := currentUser(c)

	bookings, err := h.bookings.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	c.JSON(http.StatusOK, response)
}

// CreateBooking создаёт бронирование слота для текущего пользователя
func (h *Handler) CreateBooking(c *gin.Context) {
	user := currentUser(c)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.TimeSlotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeSlotId is required"})
		return
	}

	booking, err := h.bookings.Reserve(c.Request.Context(), user.ID, req.TimeSlotID, req.Date, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// GetBooking отдаёт бронирование пользователя вместе с данными
// преподавателя и предмета
func (h *Handler) GetBooking(c *gin.Context) {
	user := currentUser(c)

	booking, err := h.bookings.GetForUser(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingDetailResponse(booking))
}

// CancelBooking отменяет подтверждённое бронирование пользователя
func (h *Handler) CancelBooking(c *gin.Context) {
	user := currentUser(c)

	if err := h.bookings.Cancel(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}
