package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"workmarket/domain"
	"workmarket/infrastructure"
)

// newTestDB opens an in-memory sqlite database named after the test so
// parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, infrastructure.Migrate(db))
	return db
}

type fakePublisher struct {
	mu     sync.Mutex
	events []infrastructure.OfferEvent
}

func (f *fakePublisher) PublishOfferEvent(ev infrastructure.OfferEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) byKind(kind domain.NotificationKind) []infrastructure.OfferEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []infrastructure.OfferEvent
	for _, ev := range f.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func makeUser(t *testing.T, db *gorm.DB, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, DisplayName: strings.Split(email, "@")[0], Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func makeJob(t *testing.T, db *gorm.DB, owner *domain.User) *domain.Job {
	t.Helper()
	j := &domain.Job{
		Title:       "Fix the leaking kitchen sink",
		Description: "The sink has been dripping for a week and the cabinet below is soaked.",
		Location:    "Rotterdam",
		Status:      domain.JobOpen,
		CreatedBy:   owner.ID,
		DatePosted:  time.Now(),
	}
	require.NoError(t, db.Create(j).Error)
	return j
}

func submitOffer(t *testing.T, svc *OfferService, contractor *domain.User, jobID string, price float64) *domain.Offer {
	t.Helper()
	offer, err := svc.Submit(context.Background(), contractor, jobID, SubmitOfferInput{
		Price:   price,
		Message: "I can be there tomorrow morning with all the parts needed.",
	})
	require.NoError(t, err)
	return offer
}
