package errs

import "errors"

// Domain errors. Handlers translate these to HTTP status codes with
// errors.Is; nothing below this layer knows about HTTP.
var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrMemberNotFound = errors.New("team member not found")

	// Inbound email reply processing.
	ErrNoTicketID          = errors.New("no ticket ID found in recipient")
	ErrUnauthorizedSender  = errors.New("unauthorized sender")
	ErrNoContent           = errors.New("no content found in email")
	ErrNoContentAfterClean = errors.New("no content found after removing quotes")
)
