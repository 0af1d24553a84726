package console

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLocked is returned by actions changing the form of a remote cluster which has not been
	// unlocked for editing.
	ErrLocked = errors.New("remote cluster is locked for editing")
	// ErrSaveInProgress is returned by Save while another save is in flight.
	ErrSaveInProgress = errors.New("save already in progress")
	// ErrUnsavedChanges is returned when locking a form which has been changed.
	ErrUnsavedChanges = errors.New("remote cluster has unsaved changes")
	ErrNotReady       = errors.New("editor is not ready")
)

// LoadError is returned when the catalogs or the remote cluster could not be fetched. Title is the
// alert shown to the user and Message the reason given by the server.
type LoadError struct {
	Resource string
	Title    string
	Message  string
	err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.err
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when the form is not valid. Nothing is sent to the server.
type ValidationError struct {
	Problems []FieldError
}

func newValidationError(problems ...FieldError) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		messages = append(messages, problem.Message)
	}
	return "invalid remote cluster: " + strings.Join(messages, ", ")
}

// SaveError is returned when the server rejected a create or update. Message is the server message
// as is.
type SaveError struct {
	Title   string
	Message string
	err     error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.err
}

func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsSaveError(err error) bool {
	var saveErr *SaveError
	return errors.As(err, &saveErr)
}
