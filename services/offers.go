package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"workmarket/domain"
	"workmarket/infrastructure"
)

const minOfferMessageLen = 10

// OfferService owns the offer lifecycle: submission, the atomic accept,
// and the read views the dashboards use. All role, ownership and status
// preconditions are checked here, not in the HTTP layer.
type OfferService struct {
	db     *gorm.DB
	events OfferEventPublisher
}

func NewOfferService(db *gorm.DB, events OfferEventPublisher) *OfferService {
	return &OfferService{db: db, events: events}
}

type SubmitOfferInput struct {
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// Submit registers a contractor's offer on an open job, exactly once.
// The existence check and the insert run in one transaction, and the
// unique index on (job_id, contractor_id) backstops a concurrent
// double submit.
func (s *OfferService) Submit(ctx context.Context, actor *domain.User, jobID string, in SubmitOfferInput) (*domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if actor.Role != domain.RoleContractor {
		return nil, domain.ErrWrongRole
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	message := strings.TrimSpace(in.Message)
	if len(message) < minOfferMessageLen {
		return nil, fmt.Errorf("%w: message must be at least %d characters long", domain.ErrValidation, minOfferMessageLen)
	}

	offer := &domain.Offer{
		JobID:          jobID,
		ContractorID:   actor.ID,
		ContractorName: actor.Name(),
		Price:          in.Price,
		Message:        message,
		Status:         domain.OfferPending,
		CreatedAt:      time.Now(),
	}

	var job domain.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrJobNotFound
			}
			return storeErr(err)
		}
		// The duplicate check comes before the status check: a
		// contractor who already bid gets DuplicateOffer even after
		// the job closes.
		var count int64
		if err := tx.Model(&domain.Offer{}).
			Where("job_id = ? AND contractor_id = ?", jobID, actor.ID).
			Count(&count).Error; err != nil {
			return storeErr(err)
		}
		if count > 0 {
			return domain.ErrDuplicateOffer
		}
		if job.Status != domain.JobOpen {
			return domain.ErrJobNotOpen
		}

		// The initial read is a non-locking snapshot, so a racing
		// accept could commit between it and the insert. This write
		// takes the job's row lock and re-verifies status = open; an
		// accept that already committed makes it match zero rows. The
		// job row is locked before the offer rows here and in Accept,
		// so the two cannot deadlock each other.
		res := tx.Model(&domain.Job{}).
			Where("id = ? AND status = ?", jobID, domain.JobOpen).
			Update("offer_count", gorm.Expr("offer_count + 1"))
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrJobNotOpen
		}

		if err := tx.Create(offer).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrDuplicateOffer
			}
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(infrastructure.OfferEvent{
		Kind:         domain.NotifyOfferSubmitted,
		JobID:        job.ID,
		JobTitle:     job.Title,
		OfferID:      offer.ID,
		PosterID:     job.CreatedBy,
		ContractorID: actor.ID,
		Price:        offer.Price,
	})
	return offer, nil
}

// Accept finalizes the competition on a job: the target offer becomes
// accepted, every other offer becomes rejected and the job moves to
// in_progress, all in one transaction. The job transition is a guarded
// conditional update, so of two racing accepts exactly one commits and
// the other observes JobNotOpen. Deadlocked attempts are retried a
// bounded number of times before surfacing ConcurrentModification.
func (s *OfferService) Accept(ctx context.Context, actor *domain.User, jobID, offerID string) (*domain.Offer, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}

	var (
		job      domain.Job
		accepted domain.Offer
		rejected []domain.Offer
	)

	attempt := func() error {
		rejected = rejected[:0]
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrJobNotFound
				}
				return storeErr(err)
			}
			if job.CreatedBy != actor.ID {
				return domain.ErrNotOwner
			}
			if job.Status != domain.JobOpen {
				return domain.ErrJobNotOpen
			}

			if err := tx.First(&accepted, "id = ? AND job_id = ?", offerID, jobID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrOfferNotFound
				}
				return storeErr(err)
			}
			if accepted.Status != domain.OfferPending {
				return domain.ErrOfferNotPending
			}

			// Guarded transition: the loser of a concurrent accept
			// matches zero rows here and the transaction rolls back.
			res := tx.Model(&domain.Job{}).
				Where("id = ? AND status = ?", jobID, domain.JobOpen).
				Update("status", domain.JobInProgress)
			if res.Error != nil {
				return storeErr(res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrJobNotOpen
			}

			if err := tx.Model(&domain.Offer{}).
				Where("id = ?", offerID).
				Update("status", domain.OfferAccepted).Error; err != nil {
				return storeErr(err)
			}
			if err := tx.Model(&domain.Offer{}).
				Where("job_id = ? AND id <> ?", jobID, offerID).
				Update("status", domain.OfferRejected).Error; err != nil {
				return storeErr(err)
			}
			if err := tx.Where("job_id = ? AND id <> ?", jobID, offerID).
				Find(&rejected).Error; err != nil {
				return storeErr(err)
			}
			return nil
		})
	}

	var err error
	for i := 0; i < acceptRetries; i++ {
		err = attempt()
		if !isRetryable(err) {
			break
		}
		time.Sleep(time.Duration(i+1) * retryBackoff)
	}
	if isRetryable(err) {
		return nil, domain.ErrConcurrentModification
	}
	if err != nil {
		return nil, err
	}

	accepted.Status = domain.OfferAccepted
	job.Status = domain.JobInProgress

	s.publish(infrastructure.OfferEvent{
		Kind:         domain.NotifyOfferAccepted,
		JobID:        job.ID,
		JobTitle:     job.Title,
		OfferID:      accepted.ID,
		PosterID:     job.CreatedBy,
		ContractorID: accepted.ContractorID,
		Price:        accepted.Price,
	})
	for _, o := range rejected {
		s.publish(infrastructure.OfferEvent{
			Kind:         domain.NotifyOfferRejected,
			JobID:        job.ID,
			JobTitle:     job.Title,
			OfferID:      o.ID,
			PosterID:     job.CreatedBy,
			ContractorID: o.ContractorID,
			Price:        o.Price,
		})
	}
	return &accepted, nil
}

// JobOffers is the owner's view of one job's offers, grouped the way
// the offers screen renders them.
type JobOffers struct {
	Job      domain.Job     `json:"job"`
	Accepted *domain.Offer  `json:"accepted,omitempty"`
	Pending  []domain.Offer `json:"pending"`
	Rejected []domain.Offer `json:"rejected"`
}

// ListForJob returns all offers on a job, newest first, grouped by
// status. Only the job owner may see them.
func (s *OfferService) ListForJob(ctx context.Context, actor *domain.User, jobID string) (*JobOffers, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}

	var job domain.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, storeErr(err)
	}
	if job.CreatedBy != actor.ID {
		return nil, domain.ErrNotOwner
	}

	var offers []domain.Offer
	if err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		return nil, storeErr(err)
	}

	view := &JobOffers{Job: job, Pending: []domain.Offer{}, Rejected: []domain.Offer{}}
	for i := range offers {
		switch offers[i].Status {
		case domain.OfferAccepted:
			view.Accepted = &offers[i]
		case domain.OfferRejected:
			view.Rejected = append(view.Rejected, offers[i])
		default:
			view.Pending = append(view.Pending, offers[i])
		}
	}
	return view, nil
}

// MyOffer is one of a contractor's offers with the job context the
// dashboard shows next to it.
type MyOffer struct {
	domain.Offer
	JobTitle  string           `json:"job_title"`
	JobStatus domain.JobStatus `json:"job_status"`
}

type MyOffers struct {
	Accepted []MyOffer `json:"accepted"`
	Pending  []MyOffer `json:"pending"`
	Rejected []MyOffer `json:"rejected"`
}

// ListMine returns the contractor's offers across all jobs, grouped by
// status.
func (s *OfferService) ListMine(ctx context.Context, actor *domain.User) (*MyOffers, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if actor.Role != domain.RoleContractor {
		return nil, domain.ErrWrongRole
	}

	var rows []MyOffer
	if err := s.db.WithContext(ctx).
		Model(&domain.Offer{}).
		Select("offers.*, jobs.title AS job_title, jobs.status AS job_status").
		Joins("JOIN jobs ON jobs.id = offers.job_id").
		Where("offers.contractor_id = ?", actor.ID).
		Order("offers.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, storeErr(err)
	}

	view := &MyOffers{Accepted: []MyOffer{}, Pending: []MyOffer{}, Rejected: []MyOffer{}}
	for _, row := range rows {
		switch row.Status {
		case domain.OfferAccepted:
			view.Accepted = append(view.Accepted, row)
		case domain.OfferRejected:
			view.Rejected = append(view.Rejected, row)
		default:
			view.Pending = append(view.Pending, row)
		}
	}
	return view, nil
}

func (s *OfferService) publish(ev infrastructure.OfferEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOfferEvent(ev); err != nil {
		// Notifications are best effort; the committed transaction stands.
		logrus.WithError(err).WithField("offer_id", ev.OfferID).Warn("failed to publish offer event")
	}
}
