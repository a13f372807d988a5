package service

import (
	"errors"
	"time"

	domainerrors "github.com/lyricsplit/lyricsplit-server/internal/errors"
	"github.com/lyricsplit/lyricsplit-server/internal/store"
)

// maxEditAttempts bounds how often an edit is replayed after losing a race
// with a concurrent write to the same document.
const maxEditAttempts = 3

// minStep keeps updatedAt strictly increasing when two writes land in the
// same millisecond.
const minStep = time.Millisecond

// storeError translates persistence errors into domain errors. Errors that
// already carry a domain code, and unknown errors, pass through unchanged.
func storeError(err error, kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.Wrapf(err, domainerrors.CodeNotFound, "%s %s not found", kind, id)
	case errors.Is(err, store.ErrStaleWrite):
		return domainerrors.Wrapf(err, domainerrors.CodeConflict, "%s %s was modified concurrently", kind, id)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrapf(err, domainerrors.CodeConflict, "%s %s already exists", kind, id)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, err.Error())
	default:
		return err
	}
}
