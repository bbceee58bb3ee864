package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches, and the gateway
// client return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist (store row, history item, session)
// - ErrExpired: screening session or credential passed its lifetime
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: upstream service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
