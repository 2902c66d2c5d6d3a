package device

import (
	"github.com/iti/rngstream"

	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/frame"
)

// HostBuilder can build hosts.
type HostBuilder struct {
	codec   detection.Codec
	mac     frame.MAC
	hasMAC  bool
	useRand bool
}

// MakeHostBuilder creates a HostBuilder with CRC-32 error detection and a
// random backoff stream.
func MakeHostBuilder() HostBuilder {
	return HostBuilder{
		codec:   detection.CRC32{},
		useRand: true,
	}
}

// WithCodec sets the error detection codec of the host.
func (b HostBuilder) WithCodec(c detection.Codec) HostBuilder {
	b.codec = c
	return b
}

// WithMAC sets the address of the host.
func (b HostBuilder) WithMAC(m frame.MAC) HostBuilder {
	b.mac = m
	b.hasMAC = true

	return b
}

// WithoutRandomBackoff makes a host that retries at the longest backoff of
// its window instead of a random one.
func (b HostBuilder) WithoutRandomBackoff() HostBuilder {
	b.useRand = false
	return b
}

// Build creates a host.
func (b HostBuilder) Build(name string) *Host {
	b.codecMustBeGiven()

	h := &Host{
		Base:   newBase(name, 1),
		codec:  b.codec,
		mac:    b.mac,
		hasMAC: b.hasMAC,
	}

	if b.useRand {
		h.rng = rngstream.New(name)
	}

	return h
}

func (b HostBuilder) codecMustBeGiven() {
	if b.codec == nil {
		panic("host codec is not given")
	}
}

// HubBuilder can build hubs.
type HubBuilder struct {
	numPorts int
}

// MakeHubBuilder creates a HubBuilder for four-port hubs.
func MakeHubBuilder() HubBuilder {
	return HubBuilder{numPorts: 4}
}

// WithNumPorts sets the number of ports.
func (b HubBuilder) WithNumPorts(n int) HubBuilder {
	b.numPorts = n
	return b
}

// Build creates a hub.
func (b HubBuilder) Build(name string) *Hub {
	return &Hub{Base: newBase(name, b.numPorts)}
}

// SwitchBuilder can build switches.
type SwitchBuilder struct {
	numPorts int
}

// MakeSwitchBuilder creates a SwitchBuilder for four-port switches.
func MakeSwitchBuilder() SwitchBuilder {
	return SwitchBuilder{numPorts: 4}
}

// WithNumPorts sets the number of ports.
func (b SwitchBuilder) WithNumPorts(n int) SwitchBuilder {
	b.numPorts = n
	return b
}

// Build creates a switch.
func (b SwitchBuilder) Build(name string) *Switch {
	s := &Switch{Base: newBase(name, b.numPorts)}

	s.state = make([]*switchPort, b.numPorts)
	for i := range s.state {
		s.state[i] = newSwitchPort()
	}

	return s
}
