package shared

import "errors"

var (

	// common errors
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// auth-specific errors
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidAuthHeaderFormat = errors.New("invalid auth header format")

	// sync-specific errors
	ErrSyncInProgress  = errors.New("sync already in progress")
	ErrOffline         = errors.New("offline")
	ErrUnknownConflict = errors.New("unknown conflict id")

	// store-specific errors
	ErrUnknownCollection = errors.New("unknown collection")
)
