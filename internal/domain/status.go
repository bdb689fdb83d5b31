package domain

import (
	"context"
	"errors"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// StatusForError maps a per-contract error onto the report status taxonomy.
// Every stage converts its failures through here so the report buckets stay
// consistent with the error types that produced them.
func StatusForError(err error) models.Status {
	var (
		noMapping *NoMappingError
		network   *NetworkError
		build     *BuildError
		timeout   *BuildTimeoutError
		mismatch  *MismatchError
	)
	switch {
	case errors.Is(err, ErrNotAContract):
		return models.StatusNotAContract
	case errors.Is(err, ErrNotVerified):
		return models.StatusUnverified
	case errors.As(err, &noMapping):
		return models.StatusNoMapping
	case errors.As(err, &network), errors.Is(err, ErrNoBytecode):
		return models.StatusNetworkError
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return models.StatusTimeout
	case errors.As(err, &mismatch):
		return models.StatusMismatch
	case errors.As(err, &build), errors.Is(err, ErrArtifactNotFound):
		return models.StatusBuildFailure
	default:
		return models.StatusBuildFailure
	}
}
