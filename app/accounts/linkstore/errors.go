package linkstore

import (
	"errors"
	"fmt"
)

// MalformedStateError means the link file exists but is not a JSON object of
// strings. Only the operation that read it fails; the file is left untouched.
type MalformedStateError struct {
	Path string
	Err  error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("linked accounts file %s is malformed: %v", e.Path, e.Err)
}

func (e *MalformedStateError) Unwrap() error { return e.Err }

func IsMalformedState(err error) bool {
	var target *MalformedStateError
	return errors.As(err, &target)
}

// MissingInputError is returned when a command got no username and the
// author has no linked account to fall back on.
type MissingInputError struct {
	UserID string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("no username given and no linked account for user %s", e.UserID)
}

func IsMissingInput(err error) bool {
	var target *MissingInputError
	return errors.As(err, &target)
}
