package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{BookingStatusPending, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusInProgress},
		{BookingStatusConfirmed, BookingStatusCancelled},
		{BookingStatusInProgress, BookingStatusCompleted},
		{BookingStatusInProgress, BookingStatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to BookingStatus
	}{
		{BookingStatusPending, BookingStatusInProgress},
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusConfirmed, BookingStatusCompleted},
		{BookingStatusConfirmed, BookingStatusPending},
		{BookingStatusInProgress, BookingStatusConfirmed},
		{BookingStatusCompleted, BookingStatusCancelled},
		{BookingStatusCompleted, BookingStatusPending},
		{BookingStatusCancelled, BookingStatusPending},
		{BookingStatusCancelled, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusPending},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestBookingStatusIsValid(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled,
	} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, BookingStatus("REFUNDED").IsValid())
	assert.False(t, BookingStatus("pending").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}

func TestPaymentStatusIsValid(t *testing.T) {
	assert.True(t, PaymentStatusPending.IsValid())
	assert.True(t, PaymentStatusPaid.IsValid())
	assert.False(t, PaymentStatus("REFUNDED").IsValid())
	assert.False(t, PaymentStatus("paid").IsValid())
}
