package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not transport concerns:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint violated (e.g. board uid collision)
// - ErrInvalidPayload: canvas object body is not well-formed JSON
// - ErrInvalidOptions: options delta fails whitelist validation
// - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidOptions = errors.New("invalid options")
	ErrUnavailable    = errors.New("unavailable")
)
