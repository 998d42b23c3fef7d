package dto

type CreateBookingRequest struct {
	Date  string  `json:"date"`
	Time  string  `json:"time"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Notes *string `json:"notes,omitempty"`
	Token *string `json:"token,omitempty"`
}

type RescheduleBookingRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
