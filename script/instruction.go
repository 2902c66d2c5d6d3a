// Package script parses instruction files. Each line schedules one
// instruction at a tick:
//
//	<tick> <command> <args...>
//
// Blank lines and lines starting with # are ignored.
package script

import (
	"net/netip"

	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

// An Instruction is a topology change or a transmission request that takes
// effect at a tick.
type Instruction interface {
	// Tick returns the tick the instruction is applied at.
	Tick() uint64

	// Line returns the line the instruction was read from, 0 when it was not
	// read from a file.
	Line() int
}

// At carries the tick and source line of an instruction.
type At struct {
	Time   uint64
	Source int
}

// Tick returns the tick the instruction is applied at.
func (a At) Tick() uint64 { return a.Time }

// Line returns the source line.
func (a At) Line() int { return a.Source }

// CreateHost adds a host.
type CreateHost struct {
	At
	Name string
}

// CreateHub adds a hub.
type CreateHub struct {
	At
	Name  string
	Ports int
}

// CreateSwitch adds a switch.
type CreateSwitch struct {
	At
	Name  string
	Ports int
}

// Connect joins two ports with a wire.
type Connect struct {
	At
	PortA string
	PortB string
}

// Disconnect removes the wire at a port.
type Disconnect struct {
	At
	Port string
}

// SetMAC assigns a host address.
type SetMAC struct {
	At
	Host string
	MAC  frame.MAC
}

// SetIP assigns a host IP address and mask.
type SetIP struct {
	At
	Host string
	Addr netip.Addr
	Mask netip.Addr
}

// Send transmits raw signals from a host.
type Send struct {
	At
	Host string
	Data []wiring.Signal
}

// SendFrame frames data from a host to a MAC address.
type SendFrame struct {
	At
	Host string
	Dst  frame.MAC
	Data []byte
}

// SendPacket sends data from a host to an IP address, resolving it first.
type SendPacket struct {
	At
	Host string
	Dst  netip.Addr
	Data []byte
}
