package domain

import "errors"

var (
	// Policy denials.
	ErrCardNotFound     = errors.New("card not found")
	ErrCardBlocked      = errors.New("card blocked")
	ErrNoRidesAvailable = errors.New("no active rides or queued products left")
	ErrQueueFull        = errors.New("card already has a queued product")

	// Validation.
	ErrInvalidProduct      = errors.New("invalid product type")
	ErrLocationRequired    = errors.New("bus location is required")
	ErrSearchQueryRequired = errors.New("search query is required")
	ErrCredentialsRequired = errors.New("email and password are required")

	// Concurrency conflicts, expected under load.
	ErrStaleProduct    = errors.New("product state changed concurrently")
	ErrAlreadyPromoted = errors.New("product already promoted")
	ErrContention      = errors.New("tap retries exhausted under contention")

	// Lookup failures outside the fare path.
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("no commuter found")
	ErrBadCredentials  = errors.New("invalid email or password")
)
