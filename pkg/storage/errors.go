package storage

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when a conditional create finds the key taken.
var ErrAlreadyExists = errors.New("record already exists")

// ErrVersionConflict is returned when a ledger append loses the race for the next sequence of a user's ledger.
var ErrVersionConflict = errors.New("ledger version conflict")

// ErrConditionFailed is returned when a status transition's precondition does not hold, e.g., because another worker already claimed the record.
var ErrConditionFailed = errors.New("condition failed")
