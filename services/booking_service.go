package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"car-station-server/models"
	"car-station-server/types"
)

// BookingService owns booking creation, lifecycle transitions, deletion,
// feedback and revenue stats.
type BookingService struct {
	db *gorm.DB
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// mapToResponse projects a booking (with lines and customer loaded) into its
// read-only response shape.
func mapToResponse(booking *models.Booking) models.BookingResponse {
	services := make([]models.BookedServiceResponse, 0, len(booking.Lines))
	for _, line := range booking.Lines {
		services = append(services, models.BookedServiceResponse{
			ServiceID:      line.ServiceID,
			Name:           line.Service.Name,
			Description:    line.Service.Description,
			PriceAtBooking: line.PriceAtBooking,
			Quantity:       line.Quantity,
			ImageURL:       line.Service.ImageURL,
		})
	}

	return models.BookingResponse{
		ID:              booking.ID,
		CustomerID:      booking.CustomerID,
		CustomerName:    booking.Customer.FirstName + " " + booking.Customer.LastName,
		Username:        booking.Customer.Username,
		BookingDateTime: booking.BookingDateTime,
		Status:          booking.Status,
		PaymentStatus:   booking.PaymentStatus,
		TotalAmount:     booking.TotalAmount,
		Services:        services,
		Rating:          booking.Rating,
		Comment:         booking.Comment,
	}
}

// loadBooking fetches a booking with its lines and customer.
func (s *BookingService) loadBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("Customer").Preload("Lines.Service").First(&booking, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %d: %v: %w", id, err, ErrInternal)
	}
	return &booking, nil
}

// Create books a set of catalog services for the calling customer. Catalog
// prices are snapshotted into lines and the booking plus all of its lines
// commit as one transaction; a failure leaves no rows behind.
func (s *BookingService) Create(principal types.Principal, req models.BookingRequest) (*models.BookingResponse, error) {
	if !principal.IsCustomer() {
		return nil, fmt.Errorf("%w: only customers can create bookings", ErrForbidden)
	}

	// Quantity is fixed at 1 per distinct service, so duplicates collapse.
	distinct := make([]uint, 0, len(req.ServiceIDs))
	seen := make(map[uint]bool, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	if len(distinct) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}
	if req.BookingDateTime.Before(time.Now()) {
		return nil, fmt.Errorf("%w: booking date/time cannot be in the past", ErrInvalidInput)
	}

	var catalogServices []models.Service
	if err := s.db.Where("id IN ?", distinct).Find(&catalogServices).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve services: %v: %w", err, ErrInternal)
	}
	if len(catalogServices) != len(distinct) {
		return nil, fmt.Errorf("%w: one or more service IDs are invalid", ErrInvalidInput)
	}

	var totalAmount float64
	for _, svc := range catalogServices {
		totalAmount += svc.Price
	}

	booking := models.Booking{
		CustomerID:      principal.UserID,
		BookingDateTime: req.BookingDateTime,
		Status:          models.BookingStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		TotalAmount:     totalAmount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		lines := make([]models.BookingLine, 0, len(catalogServices))
		for _, svc := range catalogServices {
			lines = append(lines, models.BookingLine{
				BookingID:      booking.ID,
				ServiceID:      svc.ID,
				PriceAtBooking: svc.Price,
				Quantity:       1,
			})
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %v: %w", err, ErrInternal)
	}

	log.Printf("Booking %d created for customer %d, total %.2f", booking.ID, principal.UserID, totalAmount)

	created, err := s.loadBooking(booking.ID)
	if err != nil {
		return nil, err
	}
	response := mapToResponse(created)
	return &response, nil
}

// GetByID returns a booking to an admin or to its owning customer. Anyone
// else gets NotFound; existence is not revealed to non-owners.
func (s *BookingService) GetByID(id uint, principal types.Principal) (*models.BookingResponse, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && booking.CustomerID != principal.UserID {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	response := mapToResponse(booking)
	return &response, nil
}

// ListAll returns every booking. Admin only.
func (s *BookingService) ListAll(principal types.Principal) ([]models.BookingResponse, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	var bookings []models.Booking
	if err := s.db.Preload("Customer").Preload("Lines.Service").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %v: %w", err, ErrInternal)
	}

	responses := make([]models.BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, mapToResponse(&bookings[i]))
	}
	return responses, nil
}

// ListMine returns the calling customer's bookings.
func (s *BookingService) ListMine(principal types.Principal) ([]models.BookingResponse, error) {
	if !principal.IsCustomer() {
		return nil, fmt.Errorf("%w: customer access required", ErrForbidden)
	}

	var bookings []models.Booking
	err := s.db.Where("customer_id = ?", principal.UserID).
		Preload("Customer").Preload("Lines.Service").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %v: %w", err, ErrInternal)
	}

	responses := make([]models.BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, mapToResponse(&bookings[i]))
	}
	return responses, nil
}

// UpdateStatus moves a booking through its lifecycle. Admin only. Status
// changes must follow the transition table; payment status may only be
// advanced PENDING→PAID here, as an explicit override for offline payments.
// Concurrent updates on the same booking are detected via the version column.
func (s *BookingService) UpdateStatus(id uint, principal types.Principal, req models.UpdateBookingRequest) (*models.BookingResponse, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"version": booking.Version + 1}

	if req.Status != nil {
		target := *req.Status
		if !target.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
		}
		if target != booking.Status {
			if !booking.Status.CanTransitionTo(target) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
			}
			updates["status"] = target
		}
	}

	if req.PaymentStatus != nil {
		target := *req.PaymentStatus
		if !target.IsValid() {
			return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, target)
		}
		if target != booking.PaymentStatus {
			// One-way latch: an admin may mark a pending booking paid, never
			// the reverse.
			if target != models.PaymentStatusPaid {
				return nil, fmt.Errorf("%w: payment status %s -> %s", ErrInvalidTransition, booking.PaymentStatus, target)
			}
			updates["payment_status"] = target
		}
	}

	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND version = ?", id, booking.Version).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update booking %d: %v: %w", id, result.Error, ErrInternal)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: booking %d was modified concurrently", ErrConflict, id)
	}

	log.Printf("Booking %d updated by admin %d", id, principal.UserID)

	updated, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	response := mapToResponse(updated)
	return &response, nil
}

// Delete removes a completed booking and its lines. Admin only.
func (s *BookingService) Delete(id uint, principal types.Principal) error {
	if !principal.IsAdmin() {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusCompleted {
		return fmt.Errorf("%w: only completed bookings can be deleted", ErrInvalidState)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&models.BookingLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Booking{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete booking %d: %v: %w", id, err, ErrInternal)
	}

	log.Printf("Booking %d deleted by admin %d", id, principal.UserID)
	return nil
}

// Stats sums revenue over bookings that are both completed and paid. Admin
// only. The aggregate runs as a single statement, so it sees one consistent
// snapshot without blocking writers.
func (s *BookingService) Stats(principal types.Principal) (*models.StatsResponse, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	var stats models.StatsResponse
	err := s.db.Model(&models.Booking{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS total_completed_bookings").
		Where("status = ? AND payment_status = ?", models.BookingStatusCompleted, models.PaymentStatusPaid).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %v: %w", err, ErrInternal)
	}
	return &stats, nil
}

// SubmitFeedback records a one-shot rating and comment on the caller's own
// completed booking.
func (s *BookingService) SubmitFeedback(principal types.Principal, req models.FeedbackRequest) error {
	if !principal.IsCustomer() {
		return fmt.Errorf("%w: only customers can submit feedback", ErrForbidden)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	booking, err := s.loadBooking(req.BookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != principal.UserID {
		return fmt.Errorf("%w: feedback is limited to your own bookings", ErrForbidden)
	}
	if booking.Status != models.BookingStatusCompleted {
		return fmt.Errorf("%w: feedback requires a completed booking", ErrInvalidState)
	}
	if booking.Rating != nil {
		return fmt.Errorf("%w: feedback has already been submitted", ErrConflict)
	}

	// The rating IS NULL guard makes the write race-proof against a
	// concurrent duplicate submission.
	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND version = ? AND rating IS NULL", booking.ID, booking.Version).
		Updates(map[string]interface{}{
			"rating":  req.Rating,
			"comment": req.Comment,
			"version": booking.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save feedback: %v: %w", result.Error, ErrInternal)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: feedback has already been submitted", ErrConflict)
	}

	log.Printf("Feedback recorded for booking %d by customer %d", booking.ID, principal.UserID)
	return nil
}
