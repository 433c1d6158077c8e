package specification

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserOwnedBy restricts rows to one owner
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// TextContains matches the title or the rendered markdown, case-insensitively
type TextContains struct {
	Query string
}

func (s TextContains) Apply(db *gorm.DB) *gorm.DB {
	q := strings.TrimSpace(s.Query)
	if q == "" {
		return db
	}
	pattern := "%" + q + "%"
	return db.Where("title ILIKE ? OR plain_text ILIKE ?", pattern, pattern)
}

// ForUpdate locks the selected rows until the surrounding transaction ends
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
