package discord

import (
	"recruitbot/internal/domain"
	"recruitbot/internal/ports/output"
)

// ErrorMessage returns the localized user-facing text for err. Errors
// without a domain code get the generic message.
func ErrorMessage(tr output.T, locale string, err error) string {
	if code := domain.Code(err); code != "" {
		return "❌ " + tr.T(locale, "errors."+code, nil)
	}
	return "❌ " + tr.T(locale, "errors.generic", nil)
}
