package services

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyOvercome = errors.New("craving already overcome")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPaymentsOff     = errors.New("payments are not configured")

	ErrAlreadyConnected = errors.New("buddy connection already exists")
	ErrNotConnected     = errors.New("buddy connection is not active")
)
