package models

import "errors"

var (
	ErrUnknownModel   = errors.New("models: unknown model")
	ErrDuplicateModel = errors.New("models: duplicate model")
	ErrUnknownPoint   = errors.New("models: unknown fixed point")
	ErrInvalidModel   = errors.New("models: invalid model")
)
