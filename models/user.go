package models

import (
	"time"

	"gorm.io/gorm"

	"car-station-server/types"
)

type UserRole string

const (
	RoleCustomer UserRole = types.RoleCustomer
	RoleAdmin    UserRole = types.RoleAdmin
)

// User is the single identity aggregate. Customer-specific fields live on
// the same row; the role tag decides which profile view applies.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email           string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone           string    `json:"phone" gorm:"size:20"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role            UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'customer';check:role IN ('customer','admin')"`
	FirstName       string    `json:"first_name" gorm:"size:100"`
	LastName        string    `json:"last_name" gorm:"size:100"`
	Address         string    `json:"address" gorm:"size:500"`
	ProfileImageURL *string   `json:"profile_image_url" gorm:"size:255"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:CustomerID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCustomer checks if the user is a customer
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// Principal returns the caller identity passed into core operations.
func (u *User) Principal() types.Principal {
	return types.Principal{UserID: u.ID, Role: string(u.Role)}
}

// CustomerProfile is the customer view of a user
type CustomerProfile struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Address         string  `json:"address"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// AdminProfile is the admin view of a user
type AdminProfile struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// Profile is the role-tagged profile variant of a user. Exactly one of the
// two profile fields is set, selected by Role.
type Profile struct {
	Role     UserRole         `json:"role"`
	Customer *CustomerProfile `json:"customer,omitempty"`
	Admin    *AdminProfile    `json:"admin,omitempty"`
}

// Profile projects the role-appropriate view of the user.
func (u *User) Profile() Profile {
	if u.IsAdmin() {
		return Profile{
			Role: RoleAdmin,
			Admin: &AdminProfile{
				FirstName:       u.FirstName,
				LastName:        u.LastName,
				ProfileImageURL: u.ProfileImageURL,
			},
		}
	}
	return Profile{
		Role: RoleCustomer,
		Customer: &CustomerProfile{
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			Address:         u.Address,
			ProfileImageURL: u.ProfileImageURL,
		},
	}
}

// UserResponse is the account view returned to the user themselves
type UserResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Role     UserRole `json:"role"`
	Profile  Profile  `json:"profile"`
}

// ToResponse maps a user to its account view
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Profile:  u.Profile(),
	}
}

// UserUpdateRequest is the payload for profile updates. Nil fields keep
// their current values.
type UserUpdateRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// RegisterRequest is the payload for customer and admin registration
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	Phone           string `json:"phone"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Address         string `json:"address"`
	ProfileImageURL string `json:"profile_image_url"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// JwtResponse is returned on successful login
type JwtResponse struct {
	Token           string   `json:"token"`
	ID              uint     `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	ProfileImageURL *string  `json:"profile_image_url"`
	Roles           []string `json:"roles"`
}
