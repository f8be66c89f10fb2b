package domain

import "errors"

// Error is a domain error carrying a stable code. The code doubles as the
// i18n key suffix ("errors.<code>") used by the Discord adapter.
type Error struct {
	code string
	msg  string
}

func newError(code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable code of e.
func (e *Error) Code() string { return e.code }

// Domain errors.
var (
	ErrEventNotFound        = newError("event_not_found", "event not found")
	ErrEventExists          = newError("event_exists", "event already exists")
	ErrEventFull            = newError("event_full", "event roster is full")
	ErrInvalidHeadcount     = newError("invalid_headcount", "required participant count must be at least 1")
	ErrInvalidTier          = newError("invalid_tier", "unknown reminder tier")
	ErrInvalidNotifyMinutes = newError("invalid_notify_minutes", "notify minutes must be at least 1")
	ErrNotAuthorized        = newError("not_authorized", "only the owner or an administrator can do this")
	ErrChallengeNotFound    = newError("challenge_not_found", "no pending challenge for this user")
	ErrChallengeMismatch    = newError("challenge_mismatch", "challenge code does not match")
	ErrEscalationActive     = newError("escalation_active", "an escalation is already running for this event")
	ErrDeliveryRefused      = newError("delivery_refused", "recipient refused delivery")
)

// Code extracts the domain error code from err, or "" if err is not (and
// does not wrap) a domain error.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return ""
}
