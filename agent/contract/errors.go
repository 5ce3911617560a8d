package contract

import "errors"

var (
	ErrConfig     = errors.New("configuration error")
	ErrArgument   = errors.New("capability argument error")
	ErrGeneration = errors.New("generation engine failed")
	ErrValidation = errors.New("result violates output schema")
	ErrRouting    = errors.New("routing contract mismatch")
)
