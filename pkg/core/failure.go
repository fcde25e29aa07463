package core

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	msgNotFound           = "api endpoint not found"
	msgMethodNotSupported = "method not supported"
	msgMethodNotAvailable = "method not available"
	msgInvalidBody        = "invalid request body"
)

// Failure is a dispatch outcome that maps onto an HTTP error status.
// Remote and local endpoints report failures in this one shape.
type Failure struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%d %s", f.Status, f.Message)
}

// NewFailure builds a Failure. Statuses outside 400-599 become 500.
func NewFailure(status int, msg string) *Failure {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &Failure{Status: status, Message: msg}
}

func Errorf(status int, format string, args ...any) *Failure {
	return NewFailure(status, fmt.Sprintf(format, args...))
}

func (f *Failure) IsClientError() bool { return f.Status >= 400 && f.Status < 500 }
func (f *Failure) IsServerError() bool { return f.Status >= 500 }

// AsFailure returns the Failure wrapped by err, or a 500 carrying err's text.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return NewFailure(f.Status, f.Message)
	}
	return NewFailure(http.StatusInternalServerError, err.Error())
}

func errNotFound() *Failure           { return NewFailure(http.StatusNotFound, msgNotFound) }
func errMethodNotSupported() *Failure { return NewFailure(http.StatusMethodNotAllowed, msgMethodNotSupported) }
func errMethodNotAvailable() *Failure { return NewFailure(http.StatusMethodNotAllowed, msgMethodNotAvailable) }
