package database

import "bagportal/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Sector{},
		&models.Requester{},
		&models.Property{},
		&models.BagRequest{},
		&models.Attachment{},
	}
}
