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

// ChatService manages the two-party conversations between a job's
// poster and a contractor.
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// Open returns the chat between the acting user and the other user for
// a job, creating it on first use. One of the two must own the job; the
// other is the contractor side.
func (s *ChatService) Open(ctx context.Context, actor *domain.User, jobID, otherUserID string) (*domain.Chat, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if otherUserID == "" || otherUserID == actor.ID {
		return nil, fmt.Errorf("%w: a different user is required", domain.ErrValidation)
	}

	var job domain.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, storeErr(err)
	}

	var posterID, contractorID string
	switch job.CreatedBy {
	case actor.ID:
		posterID, contractorID = actor.ID, otherUserID
	case otherUserID:
		posterID, contractorID = otherUserID, actor.ID
	default:
		return nil, domain.ErrNotParticipant
	}

	chat := &domain.Chat{JobID: job.ID, PosterID: posterID, ContractorID: contractorID}
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND poster_id = ? AND contractor_id = ?", job.ID, posterID, contractorID).
		FirstOrCreate(chat).Error
	if err != nil {
		if isDuplicateKey(err) {
			// lost a create race; the row exists now
			err = s.db.WithContext(ctx).
				First(chat, "job_id = ? AND poster_id = ? AND contractor_id = ?", job.ID, posterID, contractorID).Error
		}
		if err != nil {
			return nil, storeErr(err)
		}
	}
	return chat, nil
}

// ListForUser returns the chats the user takes part in, newest first.
func (s *ChatService) ListForUser(ctx context.Context, actor *domain.User) ([]domain.Chat, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	var chats []domain.Chat
	if err := s.db.WithContext(ctx).
		Where("poster_id = ? OR contractor_id = ?", actor.ID, actor.ID).
		Order("created_at DESC").
		Find(&chats).Error; err != nil {
		return nil, storeErr(err)
	}
	return chats, nil
}

// Send appends a message to a chat the actor participates in.
func (s *ChatService) Send(ctx context.Context, actor *domain.User, chatID, text string) (*domain.Message, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", domain.ErrValidation)
	}

	chat, err := s.chatFor(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:     chat.ID,
		SenderID:   actor.ID,
		SenderName: actor.Name(),
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, storeErr(err)
	}
	return msg, nil
}

// Messages returns a chat's messages oldest first, the order the
// conversation renders in.
func (s *ChatService) Messages(ctx context.Context, actor *domain.User, chatID string) ([]domain.Message, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	chat, err := s.chatFor(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	var msgs []domain.Message
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chat.ID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}

func (s *ChatService) chatFor(ctx context.Context, actor *domain.User, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := s.db.WithContext(ctx).First(&chat, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	if !chat.HasParticipant(actor.ID) {
		return nil, domain.ErrNotParticipant
	}
	return &chat, nil
}
