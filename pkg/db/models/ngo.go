package models

import (
	"time"

	"github.com/google/uuid"
)

// NGO represents a partner organization that receives donation pickups.
type NGO struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Address          string    `gorm:"column:address;not null"`
	Email            string    `gorm:"type:text;not null;uniqueIndex"`
	Phone            *string   `gorm:"column:phone"`
	Latitude         float64   `gorm:"column:latitude;not null"`
	Longitude        float64   `gorm:"column:longitude;not null"`
	StaffCount       int       `gorm:"column:staff_count;not null;default:0"`
	CompletedPickups int       `gorm:"column:completed_pickups;not null;default:0"`
	ActivePickups    int       `gorm:"column:active_pickups;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
