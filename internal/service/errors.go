package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be 8+ chars with upper, lower and a number")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidLanguage    = errors.New("invalid language")
	ErrForbidden          = errors.New("operation not allowed for this role")

	ErrInvalidQuantity = errors.New("quantity must be a non-negative number")
	ErrInvalidTimeBand = errors.New("unknown time band")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("payment status must be paid or pending")
	ErrSlotNotFound    = errors.New("slot not found")
)
