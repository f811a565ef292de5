package database

import (
	"log"

	"car-station-server/models"
)

// SeedServices loads a starter catalog when the services table is empty.
// Prices are in rupees.
func SeedServices() error {
	var count int64
	if err := DB.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Service catalog already has %d entries, skipping seed", count)
		return nil
	}

	services := []models.Service{
		{
			Name:        "Oil Change",
			Description: "Full synthetic engine oil replacement including oil filter and top-up of essential fluids.",
			Price:       500.00,
		},
		{
			Name:        "Wheel Alignment",
			Description: "Four-wheel computerized alignment with camber, caster and toe adjustment.",
			Price:       800.00,
		},
		{
			Name:        "Brake Inspection",
			Description: "Brake pad and disc inspection, fluid check and adjustment of the handbrake cable.",
			Price:       300.00,
		},
		{
			Name:        "AC Service",
			Description: "Air conditioning gas top-up, condenser cleaning and cabin filter replacement.",
			Price:       1500.00,
		},
		{
			Name:        "Full Car Wash",
			Description: "Exterior foam wash, interior vacuuming and dashboard polishing.",
			Price:       400.00,
		},
		{
			Name:        "Engine Diagnostics",
			Description: "OBD scan with a full report of fault codes and recommended repairs.",
			Price:       600.00,
		},
	}

	seeded := 0
	for _, service := range services {
		if err := DB.Create(&service).Error; err != nil {
			log.Printf("Error seeding service %s: %v", service.Name, err)
		} else {
			seeded++
		}
	}

	log.Printf("Seeded %d catalog services", seeded)
	return nil
}
