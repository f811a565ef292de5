package models

// PaymentRequest asks for a gateway order to be created for a booking
type PaymentRequest struct {
	BookingID uint    `json:"booking_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// PaymentResponse carries what the frontend needs to open the payment form
type PaymentResponse struct {
	OrderID   string  `json:"order_id"`
	BookingID uint    `json:"booking_id"`
	Amount    float64 `json:"amount"`
	KeyID     string  `json:"key_id"`
}

// PaymentConfirmationRequest carries the gateway's payment confirmation. The
// signature proves the confirmation originated from the gateway.
type PaymentConfirmationRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	BookingID         uint   `json:"booking_id" binding:"required"`
}
