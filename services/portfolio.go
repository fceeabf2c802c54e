package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"workmarket/domain"
)

// PortfolioService manages a contractor's completed-work showcase.
type PortfolioService struct {
	db *gorm.DB
}

func NewPortfolioService(db *gorm.DB) *PortfolioService {
	return &PortfolioService{db: db}
}

type CompletedJobInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CompletedDate time.Time `json:"completed_date"`
	ImageURLs     []string  `json:"image_urls"`
}

func (s *PortfolioService) Add(ctx context.Context, actor *domain.User, in CompletedJobInput) (*domain.CompletedJob, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if actor.Role != domain.RoleContractor {
		return nil, domain.ErrWrongRole
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	entry := &domain.CompletedJob{
		ContractorID:  actor.ID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		CompletedDate: in.CompletedDate,
		ImageURLs:     domain.ImageList(in.ImageURLs),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, storeErr(err)
	}
	return entry, nil
}

func (s *PortfolioService) Update(ctx context.Context, actor *domain.User, id string, in CompletedJobInput) (*domain.CompletedJob, error) {
	entry, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	entry.Title = strings.TrimSpace(in.Title)
	entry.Description = strings.TrimSpace(in.Description)
	entry.CompletedDate = in.CompletedDate
	entry.ImageURLs = domain.ImageList(in.ImageURLs)
	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, storeErr(err)
	}
	return entry, nil
}

func (s *PortfolioService) Delete(ctx context.Context, actor *domain.User, id string) error {
	entry, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// ListByContractor is the public profile view, newest work first.
func (s *PortfolioService) ListByContractor(ctx context.Context, contractorID string) ([]domain.CompletedJob, error) {
	var entries []domain.CompletedJob
	if err := s.db.WithContext(ctx).
		Where("contractor_id = ?", contractorID).
		Order("completed_date DESC").
		Find(&entries).Error; err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

func (s *PortfolioService) owned(ctx context.Context, actor *domain.User, id string) (*domain.CompletedJob, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	var entry domain.CompletedJob
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	if entry.ContractorID != actor.ID {
		return nil, domain.ErrNotOwner
	}
	return &entry, nil
}
