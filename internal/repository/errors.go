package repository

import "errors"

var (
	// ErrNotFound covers any entity lookup miss, including one-time
	// codes that exist physically but are past their TTL window.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a unique-key violation (email, handle, team name
	// within an event, riddle already solved by the account).
	ErrConflict = errors.New("already exists")

	// ErrAlreadyRegistered: the account already holds a registration
	// (solo or team) for the event.
	ErrAlreadyRegistered = errors.New("already registered for event")

	// ErrRegistrationClosed: the event's (team) registration flag is off.
	ErrRegistrationClosed = errors.New("registration closed")

	// ErrEventFull / ErrTeamFull: capacity limits reached.
	ErrEventFull = errors.New("event is full")
	ErrTeamFull  = errors.New("team is full")

	// ErrTransactionFailed wraps an aborted multi-document transaction.
	// Partial writes never survive; callers may retry.
	ErrTransactionFailed = errors.New("transaction failed")
)
