package match

import "errors"

var (
	// ErrInvalidMatchState indicates the chase is already decided and cannot be scored
	ErrInvalidMatchState = errors.New("invalid match state")

	// ErrInningsComplete indicates no legal balls remain in the innings
	ErrInningsComplete = errors.New("match is already completed (no balls left)")

	// ErrTargetReached indicates the batting side has already reached the target
	ErrTargetReached = errors.New("batting team has already reached the target")

	// ErrInvalidInput indicates a raw field is outside its allowed range
	ErrInvalidInput = errors.New("invalid match input")
)
