package models

import (
	"time"
)

// Service represents a catalog item offered by the station, e.g. "Oil Change".
// Price edits here never touch existing bookings; booking lines carry their
// own price snapshot.
type Service struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceRequest represents the request structure for creating/updating services
type ServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
}

// ServiceResponse represents the response structure for services
type ServiceResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// ToResponse maps a service to its response shape
func (s *Service) ToResponse() ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		ImageURL:    s.ImageURL,
	}
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
