package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"car-station-server/database"
	"car-station-server/models"
)

// RegisterServiceRoutes registers public catalog routes
func RegisterServiceRoutes(router *gin.RouterGroup) {
	router.GET("", getAllServices)
	router.GET("/:id", getService)
}

// RegisterAdminServiceRoutes registers catalog management routes. The caller
// mounts these under the admin-guarded group.
func RegisterAdminServiceRoutes(router *gin.RouterGroup) {
	router.POST("", createService)
	router.PUT("/:id", updateService)
	router.DELETE("/:id", deleteService)
	router.POST("/:id/image", uploadServiceImage)
}

// getAllServices returns the full catalog
func getAllServices(c *gin.Context) {
	var services []models.Service
	if err := database.DB.Order("name").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	responses := make([]models.ServiceResponse, 0, len(services))
	for i := range services {
		responses = append(responses, services[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"services": responses})
}

// getService returns a specific catalog service by ID
func getService(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": service.ToResponse()})
}

// createService adds a catalog service (admin only)
func createService(c *gin.Context) {
	var request models.ServiceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := models.Service{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		ImageURL:    request.ImageURL,
	}

	if err := database.DB.Create(&service).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A service with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Service created successfully", "service": service.ToResponse()})
}

// updateService edits a catalog service (admin only). Existing bookings keep
// the prices they were created with.
func updateService(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var request models.ServiceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	service.Name = request.Name
	service.Description = request.Description
	service.Price = request.Price
	if request.ImageURL != "" {
		service.ImageURL = request.ImageURL
	}

	if err := database.DB.Save(&service).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A service with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service updated successfully", "service": service.ToResponse()})
}

// deleteService removes a catalog service (admin only)
func deleteService(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	if err := database.DB.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
