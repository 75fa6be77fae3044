package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Common domain errors returned by the aggregation primitives.
// These errors provide consistent error handling across the consensus pipeline.
var (
	// ErrInvalidObservation is returned when an observation carries a NaN or
	// infinite value, or a negative weight.
	ErrInvalidObservation = errors.New("observation has invalid value or weight")

	// ErrUnknownTier is returned when a review record carries a credibility
	// tier that has no entry in the configured weight table.
	ErrUnknownTier = errors.New("unknown credibility tier")

	// ErrEmptyVehicleID is returned when an operation is invoked without a
	// vehicle identifier.
	ErrEmptyVehicleID = errors.New("vehicle id cannot be empty")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Package-level validator instance for configuration and record validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
