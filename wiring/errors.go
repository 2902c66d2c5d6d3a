package wiring

import (
	"errors"
	"fmt"
)

// ErrCollision is matched by every CollisionError.
var ErrCollision = errors.New("collision")

// ErrInvalidSignal is returned when a textual bit cannot be parsed.
var ErrInvalidSignal = errors.New("invalid signal")

// CollisionError reports a write to a channel that already holds a signal in
// the current tick.
type CollisionError struct {
	Wire      string
	Channel   Channel
	Held      Signal
	Attempted Signal
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("collision on wire %s channel %s: holds %q, wrote %q",
		e.Wire, e.Channel, e.Held, e.Attempted)
}

// Unwrap makes CollisionError match ErrCollision.
func (e *CollisionError) Unwrap() error {
	return ErrCollision
}
