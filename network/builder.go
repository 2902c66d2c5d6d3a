package network

import (
	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/sim"
)

// Builder can build networks.
type Builder struct {
	engine      sim.Engine
	ticksPerBit int
	codec       detection.Codec
	maxTicks    uint64
	randBackoff bool
}

// MakeBuilder creates a Builder with the default settings: 10 ticks per bit,
// CRC-32 detection, a limit of 100000 ticks and random collision backoff.
func MakeBuilder() Builder {
	return Builder{
		ticksPerBit: 10,
		codec:       detection.CRC32{},
		maxTicks:    100000,
		randBackoff: true,
	}
}

// WithEngine sets the engine that drives the network.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithTicksPerBit sets how many ticks a bit occupies on a wire.
func (b Builder) WithTicksPerBit(n int) Builder {
	b.ticksPerBit = n
	return b
}

// WithCodec sets the error detection codec of the hosts.
func (b Builder) WithCodec(c detection.Codec) Builder {
	b.codec = c
	return b
}

// WithMaxTicks sets the tick the simulation stops at.
func (b Builder) WithMaxTicks(n uint64) Builder {
	b.maxTicks = n
	return b
}

// WithDeterministicBackoff makes hosts retry after the longest backoff of
// their window instead of a random one.
func (b Builder) WithDeterministicBackoff() Builder {
	b.randBackoff = false
	return b
}

// Build creates a network.
func (b Builder) Build(name string) *Network {
	b.engineMustBeGiven()
	b.ticksPerBitMustBePositive()

	n := &Network{
		ticksPerBit: b.ticksPerBit,
		codec:       b.codec,
		maxTicks:    sim.VTick(b.maxTicks),
		randBackoff: b.randBackoff,
		byName:      make(map[string]int),
	}
	n.TickingComponent = sim.NewSecondaryTickingComponent(name, b.engine, n)

	return n
}

func (b Builder) engineMustBeGiven() {
	if b.engine == nil {
		panic("engine is not given")
	}
}

func (b Builder) ticksPerBitMustBePositive() {
	if b.ticksPerBit <= 0 {
		panic("ticks per bit must be positive")
	}
}
