// Package wiring provides the wires that carry signals between device ports.
package wiring

import (
	"fmt"
	"log"
)

// A Handle identifies a wire in the wire arena of a network.
type Handle int

// An End is one of the two ends of a wire.
type End uint8

// The two ends of a wire.
const (
	EndA End = iota
	EndB
)

// Other returns the opposite end.
func (e End) Other() End {
	if e == EndA {
		return EndB
	}

	return EndA
}

// An Endpoint is the device port plugged into one end of a wire.
type Endpoint struct {
	Device int
	Port   int
	Name   string
}

// A Wire is a connection between two ports. Each of its two channels holds at
// most one signal per tick. Channels must be cleared once per tick, before any
// device writes.
type Wire struct {
	handle   Handle
	name     string
	ends     [2]Endpoint
	channels [2]Signal
}

// Connect creates a wire between two endpoints.
func Connect(h Handle, a, b Endpoint) *Wire {
	if a == b {
		log.Panic("a wire cannot connect a port to itself")
	}

	w := new(Wire)
	w.handle = h
	w.name = fmt.Sprintf("%s-%s", a.Name, b.Name)
	w.ends = [2]Endpoint{a, b}

	return w
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// Handle returns the arena handle of the wire.
func (w *Wire) Handle() Handle {
	return w.handle
}

// Clear resets both channels to idle.
func (w *Wire) Clear() {
	w.channels[ChannelA] = NoSignal
	w.channels[ChannelB] = NoSignal
}

// Write places a signal on a channel. Writing to a channel that already holds
// a signal in this tick fails with a *CollisionError and leaves the held
// signal in place. Writing NoSignal never collides and changes nothing.
func (w *Wire) Write(ch Channel, s Signal) error {
	channelMustBeValid(ch)

	if s == NoSignal {
		return nil
	}

	held := w.channels[ch]
	if held != NoSignal {
		return &CollisionError{
			Wire:      w.name,
			Channel:   ch,
			Held:      held,
			Attempted: s,
		}
	}

	w.channels[ch] = s

	return nil
}

// Read returns the signal on a channel.
func (w *Wire) Read(ch Channel) Signal {
	channelMustBeValid(ch)

	return w.channels[ch]
}

// Occupied reports whether a channel holds a signal in this tick.
func (w *Wire) Occupied(ch Channel) bool {
	return w.Read(ch) != NoSignal
}

// Endpoint returns the port plugged into the given end.
func (w *Wire) Endpoint(e End) Endpoint {
	endMustBeValid(e)

	return w.ends[e]
}

// Peer returns the port plugged into the end opposite to e.
func (w *Wire) Peer(e End) Endpoint {
	return w.Endpoint(e.Other())
}

// EndOf returns the end a device port is plugged into.
func (w *Wire) EndOf(device, port int) End {
	for i, ep := range w.ends {
		if ep.Device == device && ep.Port == port {
			return End(i)
		}
	}

	panic("port not connected to this wire")
}

func channelMustBeValid(ch Channel) {
	if ch != ChannelA && ch != ChannelB {
		log.Panicf("invalid channel %d", ch)
	}
}

func endMustBeValid(e End) {
	if e != EndA && e != EndB {
		log.Panicf("invalid wire end %d", e)
	}
}
