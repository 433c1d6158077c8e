package specification

import "gorm.io/gorm"

// Specification narrows or shapes a document query
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Apply chains specs onto db in order.
func Apply(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
