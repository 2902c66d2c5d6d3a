// Package network owns the devices and wires of a simulation and drives them
// tick by tick on the simulation engine.
package network

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/script"
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/wiring"
)

// Topology errors.
var (
	ErrDuplicateName = errors.New("device name already used")
	ErrUnknownDevice = errors.New("unknown device")
	ErrUnknownPort   = errors.New("unknown port")
	ErrPortInUse     = errors.New("port already connected")
	ErrNotConnected  = errors.New("port not connected")
	ErrNotAHost      = errors.New("device is not a host")
)

// An InstructionError tells which instruction could not be applied.
type InstructionError struct {
	Instruction script.Instruction
	Err         error
}

func (e *InstructionError) Error() string {
	if e.Instruction.Line() > 0 {
		return fmt.Sprintf("line %d, tick %d: %v",
			e.Instruction.Line(), e.Instruction.Tick(), e.Err)
	}

	return fmt.Sprintf("tick %d: %v", e.Instruction.Tick(), e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// Network is the registry of devices and the arena of wires. It implements
// device.Fabric.
type Network struct {
	*sim.TickingComponent

	ticksPerBit int
	codec       detection.Codec
	maxTicks    sim.VTick
	randBackoff bool

	devices []device.Device
	byName  map[string]int
	wires   []*wiring.Wire

	deviceHooks []sim.Hook
	closers     []io.Closer

	due       []script.Instruction
	scheduled int
	err       error
	truncated bool
	ticks     uint64
}

// TicksPerBit returns the number of ticks one bit occupies.
func (n *Network) TicksPerBit() int {
	return n.ticksPerBit
}

// Wire returns the wire behind a handle, nil if it was removed.
func (n *Network) Wire(h wiring.Handle) *wiring.Wire {
	if int(h) < 0 || int(h) >= len(n.wires) {
		return nil
	}

	return n.wires[h]
}

// LookupIndex returns the index of a device, given the device name or the
// name of one of its ports.
func (n *Network) LookupIndex(name string) (int, bool) {
	if i, ok := n.byName[name]; ok {
		return i, true
	}

	d, _, err := n.resolvePort(name)
	if err != nil {
		return 0, false
	}

	return d.Index(), true
}

// LookupByIndex returns the device at index i, nil if there is none.
func (n *Network) LookupByIndex(i int) device.Device {
	if i < 0 || i >= len(n.devices) {
		return nil
	}

	return n.devices[i]
}

// DeviceCount returns the number of devices.
func (n *Network) DeviceCount() int {
	return len(n.devices)
}

// Devices returns the devices in creation order.
func (n *Network) Devices() []device.Device {
	out := make([]device.Device, len(n.devices))
	copy(out, n.devices)

	return out
}

// Device returns a device by name.
func (n *Network) Device(name string) (device.Device, bool) {
	i, ok := n.byName[name]
	if !ok {
		return nil, false
	}

	return n.devices[i], true
}

// Host returns a host by name.
func (n *Network) Host(name string) (*device.Host, error) {
	d, ok := n.Device(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
	}

	h, ok := d.(*device.Host)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAHost, name)
	}

	return h, nil
}

// Wires returns the wires currently connected.
func (n *Network) Wires() []*wiring.Wire {
	var out []*wiring.Wire

	for _, w := range n.wires {
		if w != nil {
			out = append(out, w)
		}
	}

	return out
}

// AcceptDeviceHook registers a hook on every device, present and future.
func (n *Network) AcceptDeviceHook(h sim.Hook) {
	n.deviceHooks = append(n.deviceHooks, h)

	for _, d := range n.devices {
		d.AcceptHook(h)
	}
}

// AddCloser registers something to close with the network.
func (n *Network) AddCloser(c io.Closer) {
	n.closers = append(n.closers, c)
}

// Close closes every registered closer and reports all failures.
func (n *Network) Close() error {
	var result error

	for _, c := range n.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	n.closers = nil

	return result
}

// Err returns the error that stopped the simulation, if any.
func (n *Network) Err() error {
	return n.err
}

// Truncated reports whether the simulation stopped at the tick limit.
func (n *Network) Truncated() bool {
	return n.truncated
}

// Ticks returns the number of ticks simulated.
func (n *Network) Ticks() uint64 {
	return n.ticks
}

func splitPortName(name string) (string, int, bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}

	num, err := strconv.Atoi(name[i+1:])
	if err != nil || num <= 0 {
		return "", 0, false
	}

	return name[:i], num - 1, true
}

func (n *Network) resolvePort(name string) (device.Device, int, error) {
	devName, port, ok := splitPortName(name)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownPort, name)
	}

	d, ok := n.Device(devName)
	if !ok || port >= d.NumPorts() {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownPort, name)
	}

	return d, port, nil
}
