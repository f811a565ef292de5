package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"car-station-server/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A shared in-memory database lives and dies with a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Booking{},
		&models.BookingLine{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestService(t *testing.T, db *gorm.DB, name string, price float64) *models.Service {
	t.Helper()

	service := models.Service{
		Name:        name,
		Description: name + " description",
		Price:       price,
	}
	require.NoError(t, db.Create(&service).Error)
	return &service
}

func createTestBooking(t *testing.T, db *gorm.DB, customerID uint, status models.BookingStatus, paymentStatus models.PaymentStatus, total float64) *models.Booking {
	t.Helper()

	booking := models.Booking{
		CustomerID:      customerID,
		BookingDateTime: time.Now().Add(24 * time.Hour),
		Status:          status,
		PaymentStatus:   paymentStatus,
		TotalAmount:     total,
	}
	require.NoError(t, db.Create(&booking).Error)
	return &booking
}

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	customer := createTestUser(t, db, "alice", models.RoleCustomer)
	oilChange := createTestService(t, db, "Oil Change", 500)
	carWash := createTestService(t, db, "Full Car Wash", 400)

	req := models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID, carWash.ID},
		BookingDateTime: time.Now().Add(48 * time.Hour),
	}
	resp, err := svc.Create(customer.Principal(), req)
	require.NoError(t, err)

	assert.Equal(t, customer.ID, resp.CustomerID)
	assert.Equal(t, models.BookingStatusPending, resp.Status)
	assert.Equal(t, models.PaymentStatusPending, resp.PaymentStatus)
	assert.Equal(t, 900.0, resp.TotalAmount)
	assert.Len(t, resp.Services, 2)
	assert.Nil(t, resp.Rating)
}

func TestCreateBookingSnapshotsPrices(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	customer := createTestUser(t, db, "alice", models.RoleCustomer)
	oilChange := createTestService(t, db, "Oil Change", 500)

	resp, err := svc.Create(customer.Principal(), models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID},
		BookingDateTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	// A later catalog price change must not touch existing bookings.
	require.NoError(t, db.Model(&models.Service{}).Where("id = ?", oilChange.ID).Update("price", 750).Error)

	reloaded, err := svc.GetByID(resp.ID, customer.Principal())
	require.NoError(t, err)
	assert.Equal(t, 500.0, reloaded.Services[0].PriceAtBooking)
	assert.Equal(t, 500.0, reloaded.TotalAmount)
}

func TestCreateBookingCollapsesDuplicateServices(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	customer := createTestUser(t, db, "alice", models.RoleCustomer)
	oilChange := createTestService(t, db, "Oil Change", 500)

	resp, err := svc.Create(customer.Principal(), models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID, oilChange.ID, oilChange.ID},
		BookingDateTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Services, 1)
	assert.Equal(t, 500.0, resp.TotalAmount)
}

func TestCreateBookingRejectsUnknownService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	customer := createTestUser(t, db, "alice", models.RoleCustomer)
	oilChange := createTestService(t, db, "Oil Change", 500)

	_, err := svc.Create(customer.Principal(), models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID, 9999},
		BookingDateTime: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Nothing may be left behind after a rejected create.
	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreateBookingRejectsPastDate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	customer := createTestUser(t, db, "alice", models.RoleCustomer)
	oilChange := createTestService(t, db, "Oil Change", 500)

	_, err := svc.Create(customer.Principal(), models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID},
		BookingDateTime: time.Now().Add(-1 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateBookingRequiresCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)
	oilChange := createTestService(t, db, "Oil Change", 500)

	_, err := svc.Create(admin.Principal(), models.BookingRequest{
		ServiceIDs:      []uint{oilChange.ID},
		BookingDateTime: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetByIDVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	owner := createTestUser(t, db, "alice", models.RoleCustomer)
	other := createTestUser(t, db, "bob", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)
	booking := createTestBooking(t, db, owner.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	_, err := svc.GetByID(booking.ID, owner.Principal())
	assert.NoError(t, err)

	_, err = svc.GetByID(booking.ID, admin.Principal())
	assert.NoError(t, err)

	// Another customer must not learn the booking exists.
	_, err = svc.GetByID(booking.ID, other.Principal())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(9999, admin.Principal())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMineFiltersByCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	bob := createTestUser(t, db, "bob", models.RoleCustomer)
	createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)
	createTestBooking(t, db, alice.ID, models.BookingStatusConfirmed, models.PaymentStatusPending, 400)
	createTestBooking(t, db, bob.ID, models.BookingStatusPending, models.PaymentStatusPending, 300)

	mine, err := svc.ListMine(alice.Principal())
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, alice.ID, b.CustomerID)
	}
}

func TestListAllRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)
	createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	_, err := svc.ListAll(alice.Principal())
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := svc.ListAll(admin.Principal())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	confirmed := models.BookingStatusConfirmed
	resp, err := svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, resp.Status)

	// Skipping IN_PROGRESS is not allowed.
	completed := models.BookingStatusCompleted
	_, err = svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{Status: &completed})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	inProgress := models.BookingStatusInProgress
	_, err = svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{Status: &inProgress})
	require.NoError(t, err)
	resp, err = svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, resp.Status)

	// Terminal states stay terminal.
	cancelled := models.BookingStatusCancelled
	_, err = svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{Status: &cancelled})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	confirmed := models.BookingStatusConfirmed
	_, err := svc.UpdateStatus(booking.ID, alice.Principal(), models.UpdateBookingRequest{Status: &confirmed})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusPaymentOverride(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	paid := models.PaymentStatusPaid
	resp, err := svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, resp.PaymentStatus)

	// PAID never goes back to PENDING.
	pending := models.PaymentStatusPending
	_, err = svc.UpdateStatus(booking.ID, admin.Principal(), models.UpdateBookingRequest{PaymentStatus: &pending})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusDetectsConcurrentModification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)

	// Simulate another writer bumping the version between read and write.
	confirmed := models.BookingStatusConfirmed

	loaded, err := svc.loadBooking(booking.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("version", loaded.Version+1).Error)

	result := db.Model(&models.Booking{}).
		Where("id = ? AND version = ?", booking.ID, loaded.Version).
		Updates(map[string]interface{}{"status": confirmed, "version": loaded.Version + 1})
	require.NoError(t, result.Error)
	assert.Equal(t, int64(0), result.RowsAffected)
}

func TestDeleteBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)

	pendingBooking := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 500)
	err := svc.Delete(pendingBooking.ID, admin.Principal())
	assert.ErrorIs(t, err, ErrInvalidState)

	doneBooking := createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 400)
	line := models.BookingLine{BookingID: doneBooking.ID, ServiceID: 1, PriceAtBooking: 400, Quantity: 1}
	require.NoError(t, db.Create(&line).Error)

	err = svc.Delete(doneBooking.ID, alice.Principal())
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(doneBooking.ID, admin.Principal()))

	var bookingCount, lineCount int64
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", doneBooking.ID).Count(&bookingCount).Error)
	require.NoError(t, db.Model(&models.BookingLine{}).Where("booking_id = ?", doneBooking.ID).Count(&lineCount).Error)
	assert.Equal(t, int64(0), bookingCount)
	assert.Equal(t, int64(0), lineCount)
}

func TestStatsCountsOnlyCompletedAndPaid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)

	createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 500)
	createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 300)
	createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPending, 999)
	createTestBooking(t, db, alice.ID, models.BookingStatusInProgress, models.PaymentStatusPaid, 999)
	createTestBooking(t, db, alice.ID, models.BookingStatusCancelled, models.PaymentStatusPending, 999)

	stats, err := svc.Stats(admin.Principal())
	require.NoError(t, err)
	assert.Equal(t, 800.0, stats.TotalRevenue)
	assert.Equal(t, int64(2), stats.TotalCompletedBookings)

	_, err = svc.Stats(alice.Principal())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStatsEmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)

	stats, err := svc.Stats(admin.Principal())
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, int64(0), stats.TotalCompletedBookings)
}

func TestSubmitFeedback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 500)

	err := svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{
		BookingID: booking.ID,
		Rating:    5,
		Comment:   "Great service",
	})
	require.NoError(t, err)

	resp, err := svc.GetByID(booking.ID, alice.Principal())
	require.NoError(t, err)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 5, *resp.Rating)
	require.NotNil(t, resp.Comment)
	assert.Equal(t, "Great service", *resp.Comment)
}

func TestSubmitFeedbackIsOneShot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	booking := createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 500)

	require.NoError(t, svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{
		BookingID: booking.ID,
		Rating:    4,
	}))
	err := svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{
		BookingID: booking.ID,
		Rating:    1,
	})
	assert.ErrorIs(t, err, ErrConflict)

	resp, err := svc.GetByID(booking.ID, alice.Principal())
	require.NoError(t, err)
	assert.Equal(t, 4, *resp.Rating)
}

func TestSubmitFeedbackGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(db)
	alice := createTestUser(t, db, "alice", models.RoleCustomer)
	bob := createTestUser(t, db, "bob", models.RoleCustomer)
	completed := createTestBooking(t, db, alice.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, 500)
	pending := createTestBooking(t, db, alice.ID, models.BookingStatusPending, models.PaymentStatusPending, 400)

	err := svc.SubmitFeedback(bob.Principal(), models.FeedbackRequest{BookingID: completed.ID, Rating: 3})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{BookingID: pending.ID, Rating: 3})
	assert.ErrorIs(t, err, ErrInvalidState)

	err = svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{BookingID: completed.ID, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.SubmitFeedback(alice.Principal(), models.FeedbackRequest{BookingID: 9999, Rating: 3})
	assert.True(t, errors.Is(err, ErrNotFound))
}
