package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrInvalidModel     = errors.New("invalid model")
	ErrModelNotAllowed  = errors.New("model not allowed for tier")
	ErrStoreUnavailable = errors.New("counter store unavailable")
	ErrNoPostsFound     = errors.New("no posts found")
	ErrProviderFailure  = errors.New("provider failure")
)
