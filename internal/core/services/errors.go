package services

import "errors"

// Research errors
var (
	ErrUnauthorized   = errors.New("research: no authenticated user supplied")
	ErrInvalidQuery   = errors.New("research: query must not be empty")
	ErrTaskNotFound   = errors.New("research: task not found")
	ErrTaskNotReady   = errors.New("research: task is not completed or has no report yet")
	ErrQueueFull      = errors.New("research: task queue is full, try again later")
	ErrSwotExtraction = errors.New("research: swot extraction failed")

	// ErrBackendUnavailable marks a pipeline stage whose chat backend is
	// not configured, as opposed to one that failed at runtime.
	ErrBackendUnavailable = errors.New("research: chat backend not configured")
)
