package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound = errors.New("store: document not found")
	ErrVersionNotFound  = errors.New("store: version not found")
	ErrNoVersions       = errors.New("store: document has no versions")
)

// DocumentNotFoundError reports a failed document lookup with the key that
// missed so batch callers can name the offending document.
type DocumentNotFoundError struct {
	Key string
}

func (e *DocumentNotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return ErrDocumentNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrDocumentNotFound.Error(), e.Key)
}

func (e *DocumentNotFoundError) Unwrap() error {
	return ErrDocumentNotFound
}

// VersionNotFoundError distinguishes "no such version" from "no versions at
// all" for diff and revert callers.
type VersionNotFoundError struct {
	DocumentID uuid.UUID
	VersionNum int
}

func (e *VersionNotFoundError) Error() string {
	if e == nil {
		return ErrVersionNotFound.Error()
	}
	return fmt.Sprintf("%s: version %d for document %s", ErrVersionNotFound.Error(), e.VersionNum, e.DocumentID)
}

func (e *VersionNotFoundError) Unwrap() error {
	return ErrVersionNotFound
}

// CommitError wraps a reconciliation failure with the source path of the
// document whose change set was rolled back.
type CommitError struct {
	Path string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %v", e.Path, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
