package storeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSubscriptionRequired matches any backend reply with HTTP 402.
var ErrSubscriptionRequired = errors.New("subscription required")

// SubscriptionLockMessage is shown instead of the raw 402 message.
const SubscriptionLockMessage = "Subscription required. Contact support to activate your store."

// Error is the single failure shape of the backend client: a message and
// the HTTP status it came with. Status is 0 when no response was received.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrSubscriptionRequired) match 402 replies.
func (e *Error) Is(target error) bool {
	return target == ErrSubscriptionRequired && e.Status == http.StatusPaymentRequired
}

func newHTTPError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Status: status, Message: message}
}

// UserMessage renders err for an operator: the subscription lock text for
// 402 replies, the plain message otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSubscriptionRequired) {
		return SubscriptionLockMessage
	}
	return err.Error()
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
