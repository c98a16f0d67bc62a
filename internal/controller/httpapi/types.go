package httpapi

import (
	"time"

	"github.com/kotonoha-dev/booking_api/internal/model"
)

type createBookingRequest struct {
	TimeSlotID string `json:"timeSlotId"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

type updateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
}

type bookingResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type bookingDetailResponse struct {
	bookingResponse
	TeacherID      *string `json:"teacherId,omitempty"`
	TeacherName    *string `json:"teacherName,omitempty"`
	TeacherPicture *string `json:"teacherPicture,omitempty"`
	SubjectID      *string `json:"subjectId,omitempty"`
	SubjectName    *string `json:"subjectName,omitempty"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:        b.ID,
		Status:    string(b.Status),
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Slot != nil {
		resp.Date = b.Slot.DateString()
		resp.StartTime = b.Slot.StartTime
		resp.EndTime = b.Slot.EndTime
	}
	return resp
}

func toBookingDetailResponse(b *model.Booking) bookingDetailResponse {
	resp := bookingDetailResponse{
		bookingResponse: toBookingResponse(b),
		TeacherID:       b.TeacherID,
		SubjectID:       b.SubjectID,
	}
	if b.Teacher != nil {
		resp.TeacherName = &b.Teacher.Name
		resp.TeacherPicture = b.Teacher.PictureURL
	}
	if b.Subject != nil {
		resp.SubjectName = &b.Subject.Name
	}
	return resp
}
