package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"car-station-server/config"
	"car-station-server/database"
	"car-station-server/gateway"
	"car-station-server/middleware"
	"car-station-server/models"
	"car-station-server/services"
	ws "car-station-server/websocket"
)

func paymentService() *services.PaymentService {
	cfg := config.AppConfig.Razorpay
	client := gateway.NewClient(cfg.KeyID, cfg.KeySecret, cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	return services.NewPaymentService(database.DB, client, cfg.KeyID, cfg.KeySecret)
}

// RegisterPaymentRoutes registers payment routes under the authenticated group
func RegisterPaymentRoutes(router *gin.RouterGroup) {
	router.POST("/create-order", createPaymentOrder)
	router.POST("/confirm", confirmPayment)
}

// createPaymentOrder creates a gateway order for an unpaid booking
func createPaymentOrder(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := paymentService().CreateOrder(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// confirmPayment verifies the gateway confirmation signature and, only on
// success, marks the booking paid.
func confirmPayment(c *gin.Context) {
	var req models.PaymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := paymentService()

	verified, err := svc.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		respondError(c, err)
		return
	}
	if !verified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature verification failed"})
		return
	}

	if err := svc.ReconcilePayment(req.BookingID, verified); err != nil {
		respondError(c, err)
		return
	}

	notify(ws.EventBookingPaid, req.BookingID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed successfully"})
}
