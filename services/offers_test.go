package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workmarket/domain"
)

func TestSubmitOfferPreconditions(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	contractor := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)

	valid := SubmitOfferInput{Price: 100, Message: "I can start right away and have done this before."}

	tests := []struct {
		name    string
		actor   *domain.User
		jobID   string
		input   SubmitOfferInput
		wantErr error
	}{
		{"unauthenticated", nil, job.ID, valid, domain.ErrNotAuthenticated},
		{"wrong role", poster, job.ID, valid, domain.ErrWrongRole},
		{"zero price", contractor, job.ID, SubmitOfferInput{Price: 0, Message: valid.Message}, domain.ErrValidation},
		{"negative price", contractor, job.ID, SubmitOfferInput{Price: -5, Message: valid.Message}, domain.ErrValidation},
		{"short message", contractor, job.ID, SubmitOfferInput{Price: 100, Message: "too short"}, domain.ErrValidation},
		{"missing job", contractor, "no-such-job", valid, domain.ErrJobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.actor, tt.jobID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitOfferCreatesPending(t *testing.T) {
	db := newTestDB(t)
	events := &fakePublisher{}
	svc := NewOfferService(db, events)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	contractor := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)

	offer := submitOffer(t, svc, contractor, job.ID, 100)

	assert.Equal(t, domain.OfferPending, offer.Status)
	assert.Equal(t, contractor.ID, offer.ContractorID)
	assert.Equal(t, contractor.Name(), offer.ContractorName)
	assert.NotEmpty(t, offer.ID)

	submitted := events.byKind(domain.NotifyOfferSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, poster.ID, submitted[0].PosterID)
	assert.Equal(t, offer.ID, submitted[0].OfferID)

	var storedJob domain.Job
	require.NoError(t, db.First(&storedJob, "id = ?", job.ID).Error)
	assert.EqualValues(t, 1, storedJob.OfferCount)
}

func TestSubmitOfferDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	contractor := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)

	submitOffer(t, svc, contractor, job.ID, 100)

	_, err := svc.Submit(context.Background(), contractor, job.ID, SubmitOfferInput{
		Price:   80,
		Message: "Second thoughts, I can do it cheaper than before.",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOffer)

	var count int64
	require.NoError(t, db.Model(&domain.Offer{}).Where("job_id = ?", job.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitOfferJobNotOpen(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	contractor := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)
	require.NoError(t, db.Model(job).Update("status", domain.JobInProgress).Error)

	_, err := svc.Submit(context.Background(), contractor, job.ID, SubmitOfferInput{
		Price:   100,
		Message: "Happy to take a look whenever it suits you.",
	})
	assert.ErrorIs(t, err, domain.ErrJobNotOpen)
}

// Scenario: two contractors bid, the owner accepts one. The winner is
// accepted, the loser rejected, the job moves to in_progress, and a
// second accept attempt bounces off the closed job.
func TestAcceptOfferFinalizesCompetition(t *testing.T) {
	db := newTestDB(t)
	events := &fakePublisher{}
	svc := NewOfferService(db, events)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	c1 := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	c2 := makeUser(t, db, "c2@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)

	offer1 := submitOffer(t, svc, c1, job.ID, 100)
	offer2 := submitOffer(t, svc, c2, job.ID, 90)

	accepted, err := svc.Accept(context.Background(), poster, job.ID, offer1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferAccepted, accepted.Status)

	var stored1, stored2 domain.Offer
	require.NoError(t, db.First(&stored1, "id = ?", offer1.ID).Error)
	require.NoError(t, db.First(&stored2, "id = ?", offer2.ID).Error)
	assert.Equal(t, domain.OfferAccepted, stored1.Status)
	assert.Equal(t, domain.OfferRejected, stored2.Status)

	var storedJob domain.Job
	require.NoError(t, db.First(&storedJob, "id = ?", job.ID).Error)
	assert.Equal(t, domain.JobInProgress, storedJob.Status)

	// invariant: exactly one accepted offer under the job
	var acceptedCount int64
	require.NoError(t, db.Model(&domain.Offer{}).
		Where("job_id = ? AND status = ?", job.ID, domain.OfferAccepted).
		Count(&acceptedCount).Error)
	assert.EqualValues(t, 1, acceptedCount)

	require.Len(t, events.byKind(domain.NotifyOfferAccepted), 1)
	rejectedEvents := events.byKind(domain.NotifyOfferRejected)
	require.Len(t, rejectedEvents, 1)
	assert.Equal(t, c2.ID, rejectedEvents[0].ContractorID)

	// Scenario B: accepting the loser afterwards fails, state unchanged.
	_, err = svc.Accept(context.Background(), poster, job.ID, offer2.ID)
	assert.ErrorIs(t, err, domain.ErrJobNotOpen)
	require.NoError(t, db.First(&stored2, "id = ?", offer2.ID).Error)
	assert.Equal(t, domain.OfferRejected, stored2.Status)

	// Scenario C: the winner's rival cannot resubmit on the closed job.
	_, err = svc.Submit(context.Background(), c1, job.ID, SubmitOfferInput{
		Price:   50,
		Message: "Let me sweeten the deal with a lower price now.",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOffer)
}

func TestAcceptOfferPreconditions(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	other := makeUser(t, db, "other@example.com", domain.RoleJobPoster)
	contractor := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)
	otherJob := makeJob(t, db, other)
	offer := submitOffer(t, svc, contractor, job.ID, 100)

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.Accept(context.Background(), nil, job.ID, offer.ID)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
	t.Run("not owner", func(t *testing.T) {
		_, err := svc.Accept(context.Background(), other, job.ID, offer.ID)
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
	t.Run("missing job", func(t *testing.T) {
		_, err := svc.Accept(context.Background(), poster, "no-such-job", offer.ID)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})
	t.Run("missing offer", func(t *testing.T) {
		_, err := svc.Accept(context.Background(), poster, job.ID, "no-such-offer")
		assert.ErrorIs(t, err, domain.ErrOfferNotFound)
	})
	t.Run("offer under a different job", func(t *testing.T) {
		_, err := svc.Accept(context.Background(), other, otherJob.ID, offer.ID)
		assert.ErrorIs(t, err, domain.ErrOfferNotFound)
	})
	t.Run("offer not pending", func(t *testing.T) {
		require.NoError(t, db.Model(&domain.Offer{}).
			Where("id = ?", offer.ID).
			Update("status", domain.OfferRejected).Error)
		_, err := svc.Accept(context.Background(), poster, job.ID, offer.ID)
		assert.ErrorIs(t, err, domain.ErrOfferNotPending)

		// restore for sanity
		require.NoError(t, db.Model(&domain.Offer{}).
			Where("id = ?", offer.ID).
			Update("status", domain.OfferPending).Error)
	})
}

func TestListForJobGroupsByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	c1 := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	c2 := makeUser(t, db, "c2@example.com", domain.RoleContractor)
	c3 := makeUser(t, db, "c3@example.com", domain.RoleContractor)
	job := makeJob(t, db, poster)

	offer1 := submitOffer(t, svc, c1, job.ID, 100)
	submitOffer(t, svc, c2, job.ID, 90)
	submitOffer(t, svc, c3, job.ID, 80)

	_, err := svc.Accept(context.Background(), poster, job.ID, offer1.ID)
	require.NoError(t, err)

	view, err := svc.ListForJob(context.Background(), poster, job.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Accepted)
	assert.Equal(t, offer1.ID, view.Accepted.ID)
	assert.Empty(t, view.Pending)
	assert.Len(t, view.Rejected, 2)
	assert.Equal(t, domain.JobInProgress, view.Job.Status)
}

func TestListForJobOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	stranger := makeUser(t, db, "stranger@example.com", domain.RoleJobPoster)
	job := makeJob(t, db, poster)

	_, err := svc.ListForJob(context.Background(), stranger, job.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestListMineGroupsAcrossJobs(t *testing.T) {
	db := newTestDB(t)
	svc := NewOfferService(db, nil)
	poster := makeUser(t, db, "poster@example.com", domain.RoleJobPoster)
	c1 := makeUser(t, db, "c1@example.com", domain.RoleContractor)
	c2 := makeUser(t, db, "c2@example.com", domain.RoleContractor)
	jobA := makeJob(t, db, poster)
	jobB := makeJob(t, db, poster)
	jobC := makeJob(t, db, poster)

	winning := submitOffer(t, svc, c1, jobA.ID, 100)
	submitOffer(t, svc, c2, jobA.ID, 90)
	losing := submitOffer(t, svc, c1, jobB.ID, 70)
	rival := submitOffer(t, svc, c2, jobB.ID, 60)
	submitOffer(t, svc, c1, jobC.ID, 50)

	_, err := svc.Accept(context.Background(), poster, jobA.ID, winning.ID)
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), poster, jobB.ID, rival.ID)
	require.NoError(t, err)

	view, err := svc.ListMine(context.Background(), c1)
	require.NoError(t, err)
	require.Len(t, view.Accepted, 1)
	assert.Equal(t, winning.ID, view.Accepted[0].ID)
	assert.Equal(t, jobA.Title, view.Accepted[0].JobTitle)
	assert.Equal(t, domain.JobInProgress, view.Accepted[0].JobStatus)
	require.Len(t, view.Rejected, 1)
	assert.Equal(t, losing.ID, view.Rejected[0].ID)
	require.Len(t, view.Pending, 1)

	_, err = svc.ListMine(context.Background(), poster)
	assert.ErrorIs(t, err, domain.ErrWrongRole)
}
