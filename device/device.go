// Package device implements the devices of the simulated network: hosts that
// originate and consume frames, and the hubs and switches that forward
// signals between their ports.
package device

import (
	"fmt"
	"log"

	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/wiring"
)

// Fabric is what a device sees of the network it lives in. It is passed into
// every operation that crosses a wire.
type Fabric interface {
	// TicksPerBit returns the number of ticks one transmitted bit occupies.
	TicksPerBit() int

	// Wire returns the wire behind an arena handle.
	Wire(h wiring.Handle) *wiring.Wire

	// LookupIndex returns the registry index of a device or port name.
	LookupIndex(name string) (int, bool)

	// LookupByIndex returns the device at a registry index.
	LookupByIndex(i int) Device

	// DeviceCount returns the number of registered devices.
	DeviceCount() int
}

// A Device is a Host, a Hub or a Switch. The set is closed; code that
// crosses a wire switches over the three concrete types.
type Device interface {
	sim.Hookable
	sim.Named

	Index() int
	SetIndex(i int)

	NumPorts() int
	PortName(i int) string
	Port(i int) PortRef
	Plug(i int, ref PortRef)
	Unplug(i int)

	SendChannel(i int) wiring.Channel
	SetSendChannel(i int, ch wiring.Channel)

	LastRead(i int) wiring.Signal
	SetLastRead(i int, s wiring.Signal)

	// Reset clears the per-tick state of the device.
	Reset()

	isDevice()
}

// A PortRef tells which wire end a port is plugged into. The zero value is an
// unconnected port.
type PortRef struct {
	wire      wiring.Handle
	end       wiring.End
	connected bool
}

// PluggedInto returns a reference to a wire end.
func PluggedInto(h wiring.Handle, end wiring.End) PortRef {
	return PortRef{wire: h, end: end, connected: true}
}

// Connected reports whether a wire is attached.
func (p PortRef) Connected() bool {
	return p.connected
}

// Wire returns the handle of the attached wire.
func (p PortRef) Wire() wiring.Handle {
	return p.wire
}

// End returns the wire end the port is plugged into.
func (p PortRef) End() wiring.End {
	return p.end
}

// Base carries the state every device has: ports, the last value read on
// each port and the channel each port sends on.
type Base struct {
	sim.HookableBase

	name        string
	index       int
	ports       []PortRef
	lastRead    []wiring.Signal
	sendChannel []wiring.Channel
}

func newBase(name string, numPorts int) Base {
	if numPorts <= 0 {
		log.Panicf("device %s must have at least one port", name)
	}

	b := Base{
		name:        name,
		index:       -1,
		ports:       make([]PortRef, numPorts),
		lastRead:    make([]wiring.Signal, numPorts),
		sendChannel: make([]wiring.Channel, numPorts),
	}

	for i := range b.sendChannel {
		b.sendChannel[i] = wiring.ChannelB
	}

	return b
}

// Name returns the device name.
func (b *Base) Name() string {
	return b.name
}

// Index returns the registry index, -1 before registration.
func (b *Base) Index() int {
	return b.index
}

// SetIndex records the registry index.
func (b *Base) SetIndex(i int) {
	b.index = i
}

// NumPorts returns the number of ports.
func (b *Base) NumPorts() int {
	return len(b.ports)
}

// PortName returns the name of port i, numbered from 1.
func (b *Base) PortName(i int) string {
	b.portMustExist(i)

	return fmt.Sprintf("%s_%d", b.name, i+1)
}

// Port returns what port i is plugged into.
func (b *Base) Port(i int) PortRef {
	b.portMustExist(i)

	return b.ports[i]
}

// Plug attaches port i to a wire end.
func (b *Base) Plug(i int, ref PortRef) {
	b.portMustExist(i)

	if b.ports[i].connected {
		log.Panicf("port %s already connected", b.PortName(i))
	}

	b.ports[i] = ref
}

// Unplug detaches port i.
func (b *Base) Unplug(i int) {
	b.portMustExist(i)

	b.ports[i] = PortRef{}
	b.lastRead[i] = wiring.NoSignal
}

// SendChannel returns the channel port i writes to.
func (b *Base) SendChannel(i int) wiring.Channel {
	b.portMustExist(i)

	return b.sendChannel[i]
}

// SetSendChannel selects the channel port i writes to.
func (b *Base) SetSendChannel(i int, ch wiring.Channel) {
	b.portMustExist(i)

	b.sendChannel[i] = ch
}

// LastRead returns the signal observed on port i in this tick.
func (b *Base) LastRead(i int) wiring.Signal {
	b.portMustExist(i)

	return b.lastRead[i]
}

// SetLastRead records the signal observed on port i in this tick.
func (b *Base) SetLastRead(i int, s wiring.Signal) {
	b.portMustExist(i)

	b.lastRead[i] = s
}

// Reset clears the last-read slots. It runs once per tick, along with the
// clearing of the wires.
func (b *Base) Reset() {
	for i := range b.lastRead {
		b.lastRead[i] = wiring.NoSignal
	}
}

// PortIndex returns the port index of a port name of this device.
func (b *Base) PortIndex(portName string) (int, bool) {
	for i := range b.ports {
		if b.PortName(i) == portName {
			return i, true
		}
	}

	return 0, false
}

func (b *Base) wireAt(fab Fabric, i int) *wiring.Wire {
	ref := b.ports[i]
	if !ref.connected {
		return nil
	}

	return fab.Wire(ref.wire)
}

func (b *Base) portMustExist(i int) {
	if i < 0 || i >= len(b.ports) {
		log.Panicf("device %s has no port %d", b.name, i)
	}
}

func (b *Base) isDevice() {}

// peerOf resolves the device and port on the other end of the wire at port i.
// It returns a nil device when the port or the peer cannot be resolved.
func peerOf(fab Fabric, d Device, i int) (Device, int) {
	ref := d.Port(i)
	if !ref.Connected() {
		return nil, 0
	}

	w := fab.Wire(ref.Wire())
	if w == nil {
		return nil, 0
	}

	ep := w.Peer(ref.End())

	return fab.LookupByIndex(ep.Device), ep.Port
}
