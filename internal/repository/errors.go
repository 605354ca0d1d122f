// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting error strings. For example, ErrInvalidTransition indicates
// that an order cannot move to the requested status from its current
// one, while ErrInsufficientStock signals that a sortie movement would
// drive an item's quantity below zero.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the normalized
// email is already taken. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert violates a unique key other
// than the user email (e.g. a stock item reference). Handlers translate
// this into HTTP 409.
var ErrDuplicate = errors.New("duplicate")

// ErrNotFound is returned when a requested row does not exist.
// Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when an order status or production
// stage change is not allowed from the current state. Handlers
// translate this into HTTP 409.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInsufficientStock is returned when an outbound stock movement
// exceeds the quantity on hand. Handlers translate this into HTTP 409.
var ErrInsufficientStock = errors.New("insufficient stock")
