// Package errdef classifies errors by the HTTP status code the error handler middleware answers
// with. Repositories and services create them, handlers pass them on via c.Error.
package errdef

import (
	"errors"
	"fmt"
	"net/http"
)

// Class of an error. Classes sharing a status code are still told apart by the Is functions.
type Class int

const (
	ClassBadRequest Class = iota + 1
	ClassUnauthorized
	ClassForbidden
	ClassNotFound
	ClassDuplicated
	ClassConflict
	ClassUnsupportedMediaType
)

var statusCodes = map[Class]int{
	ClassBadRequest:           http.StatusBadRequest,
	ClassUnauthorized:         http.StatusUnauthorized,
	ClassForbidden:            http.StatusForbidden,
	ClassNotFound:             http.StatusNotFound,
	ClassDuplicated:           http.StatusConflict,
	ClassConflict:             http.StatusConflict,
	ClassUnsupportedMediaType: http.StatusUnsupportedMediaType,
}

type classified struct {
	class Class
	err   error
}

func (e classified) Error() string {
	return e.err.Error()
}

func (e classified) Unwrap() error {
	return e.err
}

func newClassified(class Class, format string, a ...any) error {
	return classified{class: class, err: fmt.Errorf(format, a...)}
}

// ClassOf returns the class of the outermost classified error in the chain of err.
func ClassOf(err error) (Class, bool) {
	var e classified
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.class, true
}

// StatusCode returns the HTTP status code for err, 500 if err has not been classified.
func StatusCode(err error) int {
	class, ok := ClassOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return statusCodes[class]
}

func is(err error, class Class) bool {
	c, ok := ClassOf(err)
	return ok && c == class
}

func NewBadRequest(format string, a ...any) error {
	return newClassified(ClassBadRequest, format, a...)
}

func IsBadRequest(err error) bool {
	return is(err, ClassBadRequest)
}

func NewUnauthorized(format string, a ...any) error {
	return newClassified(ClassUnauthorized, format, a...)
}

func IsUnauthorized(err error) bool {
	return is(err, ClassUnauthorized)
}

func NewForbidden(format string, a ...any) error {
	return newClassified(ClassForbidden, format, a...)
}

func IsForbidden(err error) bool {
	return is(err, ClassForbidden)
}

// NewNotFound creates an error representing a resource that could not be found.
func NewNotFound(format string, a ...any) error {
	return newClassified(ClassNotFound, format, a...)
}

func IsNotFound(err error) bool {
	return is(err, ClassNotFound)
}

// NewDuplicated creates an error representing a resource which already exists, like a remote
// cluster name that is taken.
func NewDuplicated(format string, a ...any) error {
	return newClassified(ClassDuplicated, format, a...)
}

func IsDuplicated(err error) bool {
	return is(err, ClassDuplicated)
}

// NewConflict creates an error representing a request conflicting with the state of a resource.
func NewConflict(format string, a ...any) error {
	return newClassified(ClassConflict, format, a...)
}

func IsConflict(err error) bool {
	return is(err, ClassConflict)
}

func NewUnsupportedMediaType(format string, a ...any) error {
	return newClassified(ClassUnsupportedMediaType, format, a...)
}

func IsUnsupportedMediaType(err error) bool {
	return is(err, ClassUnsupportedMediaType)
}
