package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	NotifyErrorBadInput        = "NOTIFY_BAD_INPUT"
	NotifyErrorUnauthorized    = "NOTIFY_UNAUTHORIZED"
	NotifyErrorChannelRejected = "NOTIFY_CHANNEL_REJECTED"
	NotifyErrorNotFound        = "NOTIFY_NOT_FOUND"
	NotifyErrorUpstreamFailed  = "NOTIFY_UPSTREAM_FAILED"
	NotifyErrorInternal        = "NOTIFY_INTERNAL_ERROR"
)

// MapError normalizes any pipeline error into the goerrors envelope the
// webhook boundary translates to an HTTP status: auth failures stay 401,
// bad input and channel mismatches 400, everything else 500 so the sender
// retries the whole notification.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "credential"), strings.Contains(msg, "secret"):
		return newNotifyError(err.Error(), goerrors.CategoryAuth, NotifyErrorUnauthorized)
	case strings.Contains(msg, "channel"):
		return newNotifyError(err.Error(), goerrors.CategoryBadInput, NotifyErrorChannelRejected)
	case strings.Contains(msg, "not found"):
		return newNotifyError(err.Error(), goerrors.CategoryNotFound, NotifyErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return newNotifyError(err.Error(), goerrors.CategoryBadInput, NotifyErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func newNotifyError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = notifyHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultNotifyTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultNotifyTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return NotifyErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return NotifyErrorUnauthorized
	case goerrors.CategoryNotFound:
		return NotifyErrorNotFound
	case goerrors.CategoryExternal:
		return NotifyErrorUpstreamFailed
	default:
		return NotifyErrorInternal
	}
}

func notifyHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
