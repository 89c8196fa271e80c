package service

import "errors"

var (
	ErrNoPlatformSelected    = errors.New("at least one platform must be selected")
	ErrEmptyContent          = errors.New("post content is empty")
	ErrInvalidContent        = errors.New("post content is malformed")
	ErrMissingScheduledTime  = errors.New("scheduled_time is required")
	ErrInvalidScheduledTime  = errors.New("scheduled_time is not a recognized date/time")
	ErrPostNotFound          = errors.New("scheduled post not found")
	ErrExecutionInProgress   = errors.New("scheduled post is already executing")
	ErrPlatformNotConfigured = errors.New("client is not configured")
	ErrUnsupportedPlatform   = errors.New("unsupported platform")
)
