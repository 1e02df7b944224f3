package models

import "errors"

var (
	// ErrUnknownEvent is returned for a referential lookup miss on Events.
	// Not retried; the sheet data needs fixing.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrUnknownContact is the same for TechContacts.
	ErrUnknownContact = errors.New("unknown contact")

	// ErrInvalidRedirect marks a self-redirect or a redirect cycle. The
	// event is left unchanged so a human can correct the contact data.
	ErrInvalidRedirect = errors.New("invalid redirect")
)
