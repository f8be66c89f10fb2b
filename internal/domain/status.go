package domain

// Ticket lifecycle statuses.
const (
	StatusRecruiting = "RECRUITING"
	StatusConfirmed  = "CONFIRMED"
)

// StatusFor derives the lifecycle status from the roster size.
func StatusFor(participants, required int) string {
	if required > 0 && participants >= required {
		return StatusConfirmed
	}
	return StatusRecruiting
}
