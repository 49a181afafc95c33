package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/repos"
	"github.com/sproutly/sproutly-backend/internal/types"
)

// ChildService keeps the minimal child anchor records the ledger relations
// hang off. Family account management proper is a separate system.
type ChildService interface {
	Create(ctx context.Context, familyID uuid.UUID, name string) (*types.Child, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Child, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*types.Child, error)
}

type childService struct {
	db        *gorm.DB
	log       *logger.Logger
	childRepo repos.ChildRepo
}

func NewChildService(db *gorm.DB, log *logger.Logger, childRepo repos.ChildRepo) ChildService {
	return &childService{
		db:        db,
		log:       log.With("service", "ChildService"),
		childRepo: childRepo,
	}
}

func (s *childService) Create(ctx context.Context, familyID uuid.UUID, name string) (*types.Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("child name required")
	}
	if familyID == uuid.Nil {
		return nil, fmt.Errorf("family id required")
	}

	child := &types.Child{
		ID:       uuid.New(),
		FamilyID: familyID,
		Name:     name,
	}
	if _, err := s.childRepo.Create(ctx, nil, []*types.Child{child}); err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}
	return child, nil
}

func (s *childService) Get(ctx context.Context, id uuid.UUID) (*types.Child, error) {
	child, err := s.childRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

func (s *childService) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*types.Child, error) {
	return s.childRepo.GetByFamilyID(ctx, nil, familyID)
}
