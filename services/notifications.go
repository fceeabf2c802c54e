package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"workmarket/domain"
	"workmarket/infrastructure"
)

// NotificationService turns consumed offer events into per-user inbox
// rows and serves them back out.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// HandleOfferEvent is the queue consumer callback. Submission notifies
// the poster; accept/reject notify the contractor.
func (s *NotificationService) HandleOfferEvent(ev infrastructure.OfferEvent) {
	n := domain.Notification{
		Kind:    ev.Kind,
		JobID:   ev.JobID,
		OfferID: ev.OfferID,
	}
	switch ev.Kind {
	case domain.NotifyOfferSubmitted:
		n.UserID = ev.PosterID
		n.Body = fmt.Sprintf("New offer of $%.2f on %q", ev.Price, ev.JobTitle)
	case domain.NotifyOfferAccepted:
		n.UserID = ev.ContractorID
		n.Body = fmt.Sprintf("Your offer on %q was accepted", ev.JobTitle)
	case domain.NotifyOfferRejected:
		n.UserID = ev.ContractorID
		n.Body = fmt.Sprintf("Your offer on %q was rejected", ev.JobTitle)
	default:
		logrus.WithField("kind", ev.Kind).Warn("unknown offer event kind")
		return
	}

	if err := s.db.Create(&n).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"kind":     ev.Kind,
			"offer_id": ev.OfferID,
		}).Error("failed to store notification")
	}
}

func (s *NotificationService) List(ctx context.Context, actor *domain.User) ([]domain.Notification, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	var rows []domain.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrNotAuthenticated
	}
	var n domain.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return storeErr(err)
	}
	if n.UserID != actor.ID {
		return domain.ErrNotOwner
	}
	if err := s.db.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
		return storeErr(err)
	}
	return nil
}
