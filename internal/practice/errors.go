package practice

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is wrapped by every rejected transition. Hosts that only
// care about UI races can treat any error matching it as a no-op.
var ErrInvalidTransition = errors.New("invalid transition")

var (
	ErrNotInProgress   = fmt.Errorf("%w: session is not in progress", ErrInvalidTransition)
	ErrAlreadyAnswered = fmt.Errorf("%w: question already answered", ErrInvalidTransition)
	ErrAtFirstQuestion = fmt.Errorf("%w: already at the first question", ErrInvalidTransition)
	ErrNotCompleted    = fmt.Errorf("%w: session is not completed", ErrInvalidTransition)
	ErrNoTimeLimit     = fmt.Errorf("%w: session has no running countdown", ErrInvalidTransition)
	ErrDisposed        = fmt.Errorf("%w: session disposed", ErrInvalidTransition)
)

var (
	ErrInvalidConfig = errors.New("invalid practice config")
	ErrInvalidOption = errors.New("option must be one of A, B, C, D")
	ErrFetchFailed   = errors.New("question fetch failed")
	ErrSuperseded    = errors.New("start superseded by a newer start")
)

// loadErrorMessage is the user-facing text stored on a failed load.
const loadErrorMessage = "Failed to load questions. Please check your connection."
