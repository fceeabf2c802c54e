package domain

import "errors"

// Failure taxonomy for the offer lifecycle and everything around it.
// Services return these; the HTTP layer maps them to status codes.
var (
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrWrongRole              = errors.New("action not allowed for this role")
	ErrNotOwner               = errors.New("only the job owner may do this")
	ErrJobNotFound            = errors.New("job not found")
	ErrJobNotOpen             = errors.New("job is no longer open")
	ErrOfferNotFound          = errors.New("offer not found")
	ErrOfferNotPending        = errors.New("offer is not pending")
	ErrDuplicateOffer         = errors.New("you have already submitted an offer for this job")
	ErrConcurrentModification = errors.New("conflicting update, please retry")
	ErrValidation             = errors.New("invalid input")
	ErrNotParticipant         = errors.New("not a participant of this chat")
	ErrNotFound               = errors.New("not found")
	ErrStoreUnavailable       = errors.New("storage backend unavailable")
)
