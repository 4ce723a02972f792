package domain

import (
	"fmt"
	"time"
)

// BookingStatus is the closed set of lifecycle states of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusApproved  BookingStatus = "Approved"
	StatusCancelled BookingStatus = "Cancelled"
)

// transitions lists every legal status change. Cancelled is terminal.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

// ParseStatus converts s into a BookingStatus.
func ParseStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case StatusPending, StatusApproved, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q: %w", s, ErrValidation)
}

// CanTransition reports whether a booking in status from may move to to.
func (from BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is keyed by its ticket identifier; no other identifier is exposed.
type Booking struct {
	TicketID      string        `json:"ticket_id" dynamodbav:"ticket_id"`
	TransactionID string        `json:"transaction_id" dynamodbav:"transaction_id"`
	Temple        string        `json:"temple" dynamodbav:"temple"`
	Date          string        `json:"date" dynamodbav:"date"` // YYYY-MM-DD
	Time          string        `json:"time" dynamodbav:"time"`
	Name          string        `json:"name" dynamodbav:"name"`
	Mobile        string        `json:"mobile" dynamodbav:"mobile"`
	Email         string        `json:"email" dynamodbav:"email"`
	Aadhaar       string        `json:"aadhaar" dynamodbav:"aadhaar"`
	Status        BookingStatus `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time     `json:"updated" dynamodbav:"updated_at"`
}

// BookingSummary is the view of a booking shown to anyone holding its ticket
// id. Contact and identity fields are left out.
type BookingSummary struct {
	TicketID string        `json:"ticket_id"`
	Temple   string        `json:"temple"`
	Date     string        `json:"date"`
	Time     string        `json:"time"`
	Status   BookingStatus `json:"status"`
}

func (b *Booking) Summary() BookingSummary {
	return BookingSummary{TicketID: b.TicketID, Temple: b.Temple, Date: b.Date, Time: b.Time, Status: b.Status}
}

type CreateBookingRequest struct {
	Temple  string `json:"temple" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Mobile  string `json:"mobile" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Aadhaar string `json:"aadhaar" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingFilter combines optional predicates with logical AND.
// Dates are inclusive and compared as YYYY-MM-DD strings.
type BookingFilter struct {
	Search    string
	Status    BookingStatus
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// BookingStats summarises the bookings table for the admin dashboard.
type BookingStats struct {
	Total     int `json:"total_bookings"`
	Pending   int `json:"pending_bookings"`
	Approved  int `json:"approved_bookings"`
	Cancelled int `json:"cancelled_bookings"`
	Today     int `json:"todays_bookings"`
}
