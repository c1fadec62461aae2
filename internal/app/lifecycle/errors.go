package lifecycle

import (
	"errors"
	"fmt"

	"carematch/internal/app/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrInconsistentState = errors.New("inconsistent state")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidRequest    = errors.New("invalid request")
)

var taxonomy = []error{
	ErrNotFound,
	ErrForbidden,
	ErrInvalidTransition,
	ErrConflict,
	ErrInconsistentState,
	ErrStoreUnavailable,
	ErrInvalidRequest,
}

// classify folds store errors into the lifecycle taxonomy. Errors already in
// the taxonomy are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return err
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrStale),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrSerialization):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// outcome names err for logs and metric attributes.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInconsistentState):
		return "inconsistent_state"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "store_unavailable"
}
