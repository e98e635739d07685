package donations

import (
	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// Actor identifies the authenticated caller of a donation operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateInput captures the data required to register a donation.
type CreateInput struct {
	Address     string
	Latitude    float64
	Longitude   float64
	Volume      enums.DonationVolume
	Priority    enums.DonationPriority
	Description *string
	ImageURL    *string
}

// TransitionInput captures a status change request.
type TransitionInput struct {
	NewStatus     enums.DonationStatus
	DeclineReason *string
}

// ListInput captures listing filters from the API layer.
type ListInput struct {
	Status   *enums.DonationStatus
	Priority *enums.DonationPriority
	SortBy   string
	SortDesc bool
	Page     pagination.Params
}

// ListResult bundles a donation page with its status counts.
type ListResult struct {
	Donations []models.Donation
	Meta      pagination.Meta
	Counts    map[enums.DonationStatus]int64
}
