package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// userView is the public shape of a user record. The password hash never
// leaves the service layer.
type userView struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	FullName        string         `json:"full_name"`
	Role            enums.UserRole `json:"role"`
	NGOID           *uuid.UUID     `json:"ngo_id,omitempty"`
	NGOName         *string        `json:"ngo_name,omitempty"`
	AvatarURL       *string        `json:"avatar_url,omitempty"`
	Points          int            `json:"points"`
	TotalDonations  int            `json:"total_donations"`
	ActiveDonations int            `json:"active_donations"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toUserView(user *models.User) userView {
	return userView{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		Role:            user.Role,
		NGOID:           user.NGOID,
		AvatarURL:       user.AvatarURL,
		Points:          user.Points,
		TotalDonations:  user.TotalDonations,
		ActiveDonations: user.ActiveDonations,
		CreatedAt:       user.CreatedAt,
	}
}

type donationView struct {
	ID             uuid.UUID              `json:"id"`
	DonorID        uuid.UUID              `json:"donor_id"`
	DonorName      string                 `json:"donor_name"`
	AssignedNGOID  *uuid.UUID             `json:"assigned_ngo_id,omitempty"`
	Address        string                 `json:"address"`
	Latitude       float64                `json:"latitude"`
	Longitude      float64                `json:"longitude"`
	Volume         enums.DonationVolume   `json:"volume"`
	Priority       enums.DonationPriority `json:"priority"`
	Points         int                    `json:"points"`
	VolumeServings int                    `json:"volume_servings"`
	Status         enums.DonationStatus   `json:"status"`
	Description    *string                `json:"description,omitempty"`
	ImageURL       *string                `json:"image_url,omitempty"`
	DeclineReason  *string                `json:"decline_reason,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toDonationView(donation *models.Donation) donationView {
	return donationView{
		ID:             donation.ID,
		DonorID:        donation.DonorID,
		DonorName:      donation.DonorName,
		AssignedNGOID:  donation.AssignedNGOID,
		Address:        donation.Address,
		Latitude:       donation.Latitude,
		Longitude:      donation.Longitude,
		Volume:         donation.Volume,
		Priority:       donation.Priority,
		Points:         donation.Points,
		VolumeServings: donation.VolumeServings,
		Status:         donation.Status,
		Description:    donation.Description,
		ImageURL:       donation.ImageURL,
		DeclineReason:  donation.DeclineReason,
		CompletedAt:    donation.CompletedAt,
		CreatedAt:      donation.CreatedAt,
		UpdatedAt:      donation.UpdatedAt,
	}
}

func toDonationViews(donations []models.Donation) []donationView {
	views := make([]donationView, 0, len(donations))
	for i := range donations {
		views = append(views, toDonationView(&donations[i]))
	}
	return views
}

type ngoView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Email            string    `json:"email"`
	Phone            *string   `json:"phone,omitempty"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	StaffCount       int       `json:"staff_count"`
	CompletedPickups int       `json:"completed_pickups"`
	ActivePickups    int       `json:"active_pickups"`
	CreatedAt        time.Time `json:"created_at"`
}

func toNGOView(ngo *models.NGO) ngoView {
	return ngoView{
		ID:               ngo.ID,
		Name:             ngo.Name,
		Address:          ngo.Address,
		Email:            ngo.Email,
		Phone:            ngo.Phone,
		Latitude:         ngo.Latitude,
		Longitude:        ngo.Longitude,
		StaffCount:       ngo.StaffCount,
		CompletedPickups: ngo.CompletedPickups,
		ActivePickups:    ngo.ActivePickups,
		CreatedAt:        ngo.CreatedAt,
	}
}

func toNGOViews(ngos []models.NGO) []ngoView {
	views := make([]ngoView, 0, len(ngos))
	for i := range ngos {
		views = append(views, toNGOView(&ngos[i]))
	}
	return views
}

type activityView struct {
	ID          uuid.UUID            `json:"id"`
	Action      enums.ActivityAction `json:"action"`
	Description string               `json:"description"`
	ActorUserID *uuid.UUID           `json:"actor_user_id,omitempty"`
	ActorName   *string              `json:"actor_name,omitempty"`
	TargetID    *uuid.UUID           `json:"target_id,omitempty"`
	TargetType  *string              `json:"target_type,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func toActivityViews(entries []models.ActivityEntry) []activityView {
	views := make([]activityView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, activityView{
			ID:          entry.ID,
			Action:      entry.Action,
			Description: entry.Description,
			ActorUserID: entry.ActorUserID,
			ActorName:   entry.ActorName,
			TargetID:    entry.TargetID,
			TargetType:  entry.TargetType,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return views
}
