package types

import "errors"

// Sentinel errors shared across module boundaries so HTTP handlers can map
// them to status codes without importing the module that produced them.
var (
	ErrCameraNotFound  = errors.New("camera not found")
	ErrSessionNotFound = errors.New("session not found")
)
