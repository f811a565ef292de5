package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// statusTransitions is the allowed lifecycle table. COMPLETED and CANCELLED
// are terminal.
var statusTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionTo reports whether a booking status may move to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether the value is a known booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid reports whether the value is a known payment status.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// Booking represents a scheduled service appointment. Lines are owned values;
// the booking never appears inside its own lines, so there are no reference
// cycles to break.
type Booking struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	CustomerID      uint          `json:"customer_id" gorm:"not null;index"`
	BookingDateTime time.Time     `json:"booking_date_time" gorm:"not null"`
	Status          BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','CONFIRMED','IN_PROGRESS','COMPLETED','CANCELLED')"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:'PENDING';check:payment_status IN ('PENDING','PAID')"`
	TotalAmount     float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Rating          *int          `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	Comment         *string       `json:"comment" gorm:"type:text"`
	Version         uint          `json:"-" gorm:"not null;default:0"` // optimistic concurrency guard
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Customer User          `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Lines    []BookingLine `json:"lines,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BookingLine snapshots one catalog service inside a booking. PriceAtBooking
// is the catalog price at creation time and never changes afterwards.
type BookingLine struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	BookingID      uint    `json:"booking_id" gorm:"not null;index"`
	ServiceID      uint    `json:"service_id" gorm:"not null"`
	PriceAtBooking float64 `json:"price_at_booking" gorm:"type:decimal(10,2);not null"`
	Quantity       int     `json:"quantity" gorm:"not null;default:1;check:quantity >= 1"`

	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// TableName specifies the table name for the BookingLine model
func (BookingLine) TableName() string {
	return "booking_lines"
}

// BookingRequest is the payload for creating a booking
type BookingRequest struct {
	ServiceIDs      []uint    `json:"service_ids" binding:"required,min=1"`
	BookingDateTime time.Time `json:"booking_date_time" binding:"required"`
}

// UpdateBookingRequest is the admin payload for moving a booking through its
// lifecycle. Both fields are optional for partial updates.
type UpdateBookingRequest struct {
	Status        *BookingStatus `json:"status"`
	PaymentStatus *PaymentStatus `json:"payment_status"`
}

// FeedbackRequest is the customer payload for rating a completed booking
type FeedbackRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// BookedServiceResponse is one line of a booking as returned to clients
type BookedServiceResponse struct {
	ServiceID      uint    `json:"service_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	PriceAtBooking float64 `json:"price_at_booking"`
	Quantity       int     `json:"quantity"`
	ImageURL       string  `json:"image_url"`
}

// BookingResponse is the read-only projection of a booking. It carries line
// values and denormalized customer info instead of entity back-references.
type BookingResponse struct {
	ID              uint                    `json:"id"`
	CustomerID      uint                    `json:"customer_id"`
	CustomerName    string                  `json:"customer_name"`
	Username        string                  `json:"username"`
	BookingDateTime time.Time               `json:"booking_date_time"`
	Status          BookingStatus           `json:"status"`
	PaymentStatus   PaymentStatus           `json:"payment_status"`
	TotalAmount     float64                 `json:"total_amount"`
	Services        []BookedServiceResponse `json:"services"`
	Rating          *int                    `json:"rating"`
	Comment         *string                 `json:"comment"`
}

// StatsResponse aggregates revenue over completed, paid bookings
type StatsResponse struct {
	TotalRevenue           float64 `json:"total_revenue"`
	TotalCompletedBookings int64   `json:"total_completed_bookings"`
}
