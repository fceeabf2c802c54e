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

// Form minimums mirror the posting form's validation.
const (
	minJobTitleLen       = 5
	minJobDescriptionLen = 20
	minJobLocationLen    = 2
)

type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

type CreateJobInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
}

// Create posts a new open job owned by the acting job poster.
func (s *JobService) Create(ctx context.Context, actor *domain.User, in CreateJobInput) (*domain.Job, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if actor.Role != domain.RoleJobPoster {
		return nil, domain.ErrWrongRole
	}
	if len(strings.TrimSpace(in.Title)) < minJobTitleLen {
		return nil, fmt.Errorf("%w: title must be at least %d characters long", domain.ErrValidation, minJobTitleLen)
	}
	if len(strings.TrimSpace(in.Description)) < minJobDescriptionLen {
		return nil, fmt.Errorf("%w: description must be at least %d characters long", domain.ErrValidation, minJobDescriptionLen)
	}
	if len(strings.TrimSpace(in.Location)) < minJobLocationLen {
		return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", domain.ErrValidation)
	}

	job := &domain.Job{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.TrimSpace(in.Category),
		Budget:      in.Budget,
		Status:      domain.JobOpen,
		CreatedBy:   actor.ID,
		DatePosted:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, storeErr(err)
	}
	return job, nil
}

// List returns jobs newest first, optionally filtered by category. An
// empty status means the browse default, open jobs.
func (s *JobService) List(ctx context.Context, status domain.JobStatus, category string) ([]domain.Job, error) {
	if status == "" {
		status = domain.JobOpen
	}
	if !domain.ValidJobStatus(status) {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrValidation, status)
	}

	q := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("date_posted DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var jobs []domain.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, storeErr(err)
	}
	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, storeErr(err)
	}
	return &job, nil
}

// JobWithPending is one row of the poster dashboard.
type JobWithPending struct {
	domain.Job
	PendingOffers int64 `json:"pending_offers"`
}

type PosterDashboard struct {
	Jobs               []JobWithPending `json:"jobs"`
	TotalPendingOffers int64            `json:"total_pending_offers"`
}

// Mine returns the poster's own jobs, newest first, each with its
// pending offer count.
func (s *JobService) Mine(ctx context.Context, actor *domain.User) (*PosterDashboard, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if actor.Role != domain.RoleJobPoster {
		return nil, domain.ErrWrongRole
	}

	var rows []JobWithPending
	if err := s.db.WithContext(ctx).
		Model(&domain.Job{}).
		Select("jobs.*, COUNT(offers.id) AS pending_offers").
		Joins("LEFT JOIN offers ON offers.job_id = jobs.id AND offers.status = ?", domain.OfferPending).
		Where("jobs.created_by = ?", actor.ID).
		Group("jobs.id").
		Order("jobs.date_posted DESC").
		Scan(&rows).Error; err != nil {
		return nil, storeErr(err)
	}

	dash := &PosterDashboard{Jobs: rows}
	if dash.Jobs == nil {
		dash.Jobs = []JobWithPending{}
	}
	for _, row := range rows {
		dash.TotalPendingOffers += row.PendingOffers
	}
	return dash, nil
}
