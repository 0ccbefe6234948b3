package domain

import "errors"

var (
	// ErrGatewayDisabled: no model API key configured; the gateway runs
	// in a disabled state instead of crashing at startup.
	ErrGatewayDisabled = errors.New("classification gateway is disabled")

	ErrEmptyVideo       = errors.New("video data is required")
	ErrBadEncoding      = errors.New("video payload is not valid base64")
	ErrVideoTooLarge    = errors.New("video payload exceeds size limit")
	ErrModelTimeout     = errors.New("model call timed out")
	ErrNoClassification = errors.New("model response contained no valid JSON object")
	ErrInvalidResult    = errors.New("model returned an invalid classification")
)
