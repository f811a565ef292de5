package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"car-station-server/database"
	"car-station-server/middleware"
	"car-station-server/models"
	"car-station-server/services"
	ws "car-station-server/websocket"
)

// eventHub receives booking lifecycle events for the admin dashboard feed.
// Nil when the feed is disabled (tests).
var eventHub *ws.Hub

// InitEventHub wires the dashboard event hub into the booking routes
func InitEventHub(hub *ws.Hub) {
	eventHub = hub
}

func notify(eventType string, bookingID uint, data interface{}) {
	if eventHub != nil {
		eventHub.Notify(eventType, bookingID, data)
	}
}

// respondError maps core errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrExternalService):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bookingService() *services.BookingService {
	return services.NewBookingService(database.DB)
}

// RegisterBookingRoutes registers booking routes under the authenticated group
func RegisterBookingRoutes(router *gin.RouterGroup) {
	router.POST("", createBooking)
	router.GET("", listAllBookings)
	router.GET("/my-bookings", listMyBookings)
	router.GET("/stats", getStats)
	router.GET("/:id", getBooking)
	router.PUT("/:id/status", updateBookingStatus)
	router.DELETE("/:id", deleteBooking)
	router.POST("/feedback", submitFeedback)
}

// createBooking books catalog services for the calling customer
func createBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := bookingService().Create(middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	notify(ws.EventBookingCreated, booking.ID, booking)
	c.JSON(http.StatusCreated, booking)
}

// listAllBookings returns every booking (admin only)
func listAllBookings(c *gin.Context) {
	bookings, err := bookingService().ListAll(middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// listMyBookings returns the calling customer's bookings
func listMyBookings(c *gin.Context) {
	bookings, err := bookingService().ListMine(middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// getBooking returns one booking, visible to its owner or an admin
func getBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := bookingService().GetByID(uint(id), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// updateBookingStatus advances a booking through its lifecycle (admin only)
func updateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := bookingService().UpdateStatus(uint(id), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	notify(ws.EventBookingUpdated, booking.ID, booking)
	c.JSON(http.StatusOK, booking)
}

// deleteBooking removes a completed booking (admin only)
func deleteBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := bookingService().Delete(uint(id), middleware.GetPrincipal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getStats returns revenue stats over completed, paid bookings (admin only)
func getStats(c *gin.Context) {
	stats, err := bookingService().Stats(middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// submitFeedback records a one-shot rating on the caller's completed booking
func submitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bookingService().SubmitFeedback(middleware.GetPrincipal(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Feedback submitted successfully"})
}
