package service

import "errors"

var (
	// ErrInvalidAmount is returned when a monetary amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRegistrationID is returned when registration ID is empty.
	ErrInvalidRegistrationID = errors.New("invalid registration id")

	// ErrInvalidPaymentMethodID is returned when the gateway payment method ID is empty.
	ErrInvalidPaymentMethodID = errors.New("invalid payment method id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrReconcileInProgress is returned when a reconciliation run is triggered
	// while another run holds the single-flight lock.
	ErrReconcileInProgress = errors.New("reconciliation already in progress")
)
