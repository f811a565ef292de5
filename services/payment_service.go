package services

import (
	"context"
	"fmt"
	"log"
	"math"

	"gorm.io/gorm"

	"car-station-server/models"
	"car-station-server/types"
	"car-station-server/utils"
)

// OrderCreator is the slice of the payment gateway this service needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

// PaymentService owns gateway order creation and payment reconciliation.
// A booking only becomes PAID after its confirmation signature verifies.
type PaymentService struct {
	db        *gorm.DB
	gateway   OrderCreator
	keyID     string
	keySecret string
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, gateway OrderCreator, keyID, keySecret string) *PaymentService {
	return &PaymentService{
		db:        db,
		gateway:   gateway,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// AmountToPaise converts a rupee amount to paise, rounding half up.
// Truncating here would systematically undercharge by up to one paisa.
func AmountToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder creates a gateway order for an unpaid booking and returns what
// the client needs to open the payment form. The booking ID rides along as
// the gateway receipt.
func (s *PaymentService) CreateOrder(ctx context.Context, principal types.Principal, req models.PaymentRequest) (*models.PaymentResponse, error) {
	var booking models.Booking
	err := s.db.First(&booking, req.BookingID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, req.BookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %d: %v: %w", req.BookingID, err, ErrInternal)
	}

	if !principal.IsAdmin() && booking.CustomerID != principal.UserID {
		return nil, fmt.Errorf("%w: you can only pay for your own bookings", ErrForbidden)
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: payment for this booking is already completed", ErrConflict)
	}

	amountPaise := AmountToPaise(req.Amount)
	receipt := fmt.Sprintf("receipt_%d", booking.ID)

	orderID, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	log.Printf("Razorpay order %s created for booking %d (%d paise)", orderID, booking.ID, amountPaise)

	return &models.PaymentResponse{
		OrderID:   orderID,
		BookingID: booking.ID,
		Amount:    req.Amount,
		KeyID:     s.keyID,
	}, nil
}

// VerifySignature checks that a payment confirmation was signed by the
// gateway. A mismatch is a false return, never an error.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) (bool, error) {
	ok, err := utils.VerifyPaymentSignature(orderID, paymentID, signature, s.keySecret)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return ok, nil
}

// ReconcilePayment marks a booking paid after a verified confirmation. An
// unverified confirmation mutates nothing. Reconciling an already-paid
// booking is a no-op, so duplicate confirmation deliveries converge on a
// single PAID state.
func (s *PaymentService) ReconcilePayment(bookingID uint, verified bool) error {
	if !verified {
		return nil
	}

	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND payment_status = ?", bookingID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status for booking %d: %v: %w", bookingID, result.Error, ErrInternal)
	}
	if result.RowsAffected > 0 {
		log.Printf("Booking %d payment status updated to %s", bookingID, models.PaymentStatusPaid)
		return nil
	}

	// Nothing matched: either the booking does not exist, or it is already
	// paid and this is a duplicate delivery.
	var booking models.Booking
	err := s.db.First(&booking, bookingID).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	if err != nil {
		return fmt.Errorf("failed to load booking %d: %v: %w", bookingID, err, ErrInternal)
	}

	log.Printf("Booking %d is already paid, ignoring duplicate confirmation", bookingID)
	return nil
}
