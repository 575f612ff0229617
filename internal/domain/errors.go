package domain

import "errors"

var (
	// ErrScrollerNotFound is returned when a slug resolves to no scroller.
	ErrScrollerNotFound = errors.New("scroller not found")

	// ErrRateLimited is returned when a scroller exhausted its request
	// window. Callers may retry after the window elapses.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput marks caller mistakes, as opposed to storage or
	// generator failures.
	ErrInvalidInput = errors.New("invalid input")
)
