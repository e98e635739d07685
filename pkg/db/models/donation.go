package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// Donation is the central lifecycle entity. Points and servings are computed
// once at creation and never change afterwards. Rows are never deleted.
type Donation struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID            uuid.UUID              `gorm:"column:donor_id;type:uuid;not null;index"`
	DonorName          string                 `gorm:"column:donor_name;not null"`
	AssignedNGOID      *uuid.UUID             `gorm:"column:assigned_ngo_id;type:uuid"`
	Address            string                 `gorm:"column:address;not null"`
	Latitude           float64                `gorm:"column:latitude;not null"`
	Longitude          float64                `gorm:"column:longitude;not null"`
	Volume             enums.DonationVolume   `gorm:"column:volume;type:text;not null"`
	Priority           enums.DonationPriority `gorm:"column:priority;type:text;not null"`
	Points             int                    `gorm:"column:points;not null"`
	VolumeServings     int                    `gorm:"column:volume_servings;not null"`
	Status             enums.DonationStatus   `gorm:"column:status;type:text;not null;default:'pending';index"`
	Description        *string                `gorm:"column:description"`
	ImageURL           *string                `gorm:"column:image_url"`
	DeclineReason      *string                `gorm:"column:decline_reason"`
	CompletedByStaffID *uuid.UUID             `gorm:"column:completed_by_staff_id;type:uuid"`
	CompletedAt        *time.Time             `gorm:"column:completed_at"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
