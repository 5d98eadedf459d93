// Package service holds the business rules of the shop. Services are built
// once at startup with their collaborators and are safe for concurrent use.
package service

import "errors"

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 400, duplicate account

	ErrInvalidCredentials = errors.New("invalid email or password")    // 401
	ErrEmailNotVerified   = errors.New("email not verified")           // 403
	ErrAccountDeactivated = errors.New("account deactivated")          // 403
	ErrInvalidToken       = errors.New("invalid or expired token")     // 400
	ErrAlreadyVerified    = errors.New("email already verified")       // 400
	ErrEmailNotConfigured = errors.New("email service not configured") // 503
	ErrEmailDelivery      = errors.New("email delivery failed")        // 503
	ErrUnavailable        = errors.New("service unavailable")          // 503
)
