package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// User represents the canonical identity entity. Donation counters and
// points are denormalized here and maintained by the donation lifecycle.
type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string         `gorm:"column:password_hash;not null"`
	FullName        string         `gorm:"column:full_name;not null"`
	Role            enums.UserRole `gorm:"column:role;type:text;not null"`
	NGOID           *uuid.UUID     `gorm:"column:ngo_id;type:uuid"`
	AvatarURL       *string        `gorm:"column:avatar_url"`
	Points          int            `gorm:"column:points;not null;default:0"`
	TotalDonations  int            `gorm:"column:total_donations;not null;default:0"`
	ActiveDonations int            `gorm:"column:active_donations;not null;default:0"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
