package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// ActivityEntry is an append-only audit record. Entries are never updated.
type ActivityEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Action      enums.ActivityAction `gorm:"column:action;type:text;not null"`
	Description string               `gorm:"column:description;not null"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	ActorName   *string              `gorm:"column:actor_name"`
	TargetID    *uuid.UUID           `gorm:"column:target_id;type:uuid"`
	TargetType  *string              `gorm:"column:target_type"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime;index"`
}
