package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-station-server/database"
	"car-station-server/middleware"
	"car-station-server/models"
)

// RegisterUserRoutes registers account routes under the authenticated group
func RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/me", getCurrentUser)
	router.PUT("/me", updateCurrentUser)
}

func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	principal := middleware.GetPrincipal(c)

	var user models.User
	if err := database.DB.First(&user, principal.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// getCurrentUser returns the calling user's account and profile
func getCurrentUser(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// updateCurrentUser edits the caller's own profile. Unset fields keep their
// current values; the address field only applies to customer profiles.
func updateCurrentUser(c *gin.Context) {
	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil && user.IsCustomer() {
		user.Address = *req.Address
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = req.ProfileImageURL
	}

	if err := database.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user.ToResponse()})
}
