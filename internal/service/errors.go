package service

import "errors"

var (
	// ErrInvalidPeriod is returned for malformed or out-of-range period selections
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidQuestion is returned for questions the service refuses to process
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrRecordsUnavailable is returned when the order dataset could not be loaded
	ErrRecordsUnavailable = errors.New("order records unavailable")
)
