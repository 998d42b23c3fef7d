package dto

import (
	"time"

	"github.com/THF151/booking-backend/internal/models"
)

type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func ToSlotsResponse(date string, slots []time.Time) SlotsResponse {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.UTC().Format(time.RFC3339)
	}
	return SlotsResponse{Date: date, Slots: out}
}

type BookingResponse struct {
	ID              string               `json:"id"`
	EventID         string               `json:"event_id"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	Location        *string              `json:"location,omitempty"`
	Status          models.BookingStatus `json:"status"`
	ManagementToken string               `json:"management_token"`
	CreatedAt       time.Time            `json:"created_at"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		EventID:         b.EventID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		Location:        b.Location,
		Status:          b.Status,
		ManagementToken: b.ManagementToken,
		CreatedAt:       b.CreatedAt,
	}
}

type ManagedBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Event   *models.Event   `json:"event"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
