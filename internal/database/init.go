package database

import (
	"gorm.io/gorm"
)

// InitPortalDatabase opens the single portal database handle. The handle
// is passed explicitly to every component; there is no package-level
// cached client.
func InitPortalDatabase(dbConfig *DatabaseConfig) (*gorm.DB, error) {
	return NewConnection(dbConfig)
}
