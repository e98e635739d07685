package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// Entry captures a single audit event before persistence.
type Entry struct {
	Action      enums.ActivityAction
	Description string
	ActorUserID *uuid.UUID
	ActorName   *string
	TargetID    *uuid.UUID
	TargetType  *string
}

// Recorder appends audit entries, optionally inside an ongoing transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Service exposes the activity log surface.
type Service interface {
	Recorder
	List(ctx context.Context, params pagination.Params) ([]models.ActivityEntry, pagination.Meta, error)
}

type service struct {
	repo Repository
}

// NewService builds an activity service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid activity action %q", entry.Action)
	}
	record := &models.ActivityEntry{
		Action:      entry.Action,
		Description: entry.Description,
		ActorUserID: entry.ActorUserID,
		ActorName:   entry.ActorName,
		TargetID:    entry.TargetID,
		TargetType:  entry.TargetType,
	}
	return s.repo.WithTx(tx).Append(ctx, record)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.ActivityEntry, pagination.Meta, error) {
	entries, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return entries, pagination.MetaFor(params, total), nil
}
