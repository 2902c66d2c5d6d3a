package network

import (
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/script"
	"github.com/sarchlab/ethersim/sim"
)

// instructionEvent delivers an instruction to the network at its tick.
type instructionEvent struct {
	sim.EventBase
	inst script.Instruction
}

// Schedule turns instructions into engine events at their ticks.
// Instructions past the tick limit are dropped.
func (n *Network) Schedule(insts []script.Instruction) {
	for _, inst := range insts {
		t := sim.VTick(inst.Tick())
		if t > n.maxTicks {
			continue
		}

		evt := instructionEvent{
			EventBase: sim.MakeEventBase(t, n),
			inst:      inst,
		}

		n.scheduled++
		n.Engine.Schedule(evt)
	}
}

// Handle takes instruction events. The instruction is applied by the tick
// of the same time, after the carried-over transmissions moved on.
func (n *Network) Handle(e sim.Event) error {
	evt, ok := e.(instructionEvent)
	if !ok {
		return &sim.UnexpectedEventError{Comp: n.Name(), Event: e}
	}

	n.scheduled--

	if n.err != nil {
		return n.err
	}

	n.due = append(n.due, evt.inst)
	n.TickNow()

	return nil
}

// Run runs the engine until the network is quiet and no instruction is left,
// or until the tick limit. It returns the first instruction error.
func (n *Network) Run() error {
	if err := n.Engine.Run(); err != nil {
		return err
	}

	n.Engine.Finished()

	return n.err
}

// Tick advances the network by one tick.
func (n *Network) Tick() bool {
	now := n.CurrentTime()
	n.ticks++

	n.clearWires()

	hosts := n.hosts()

	for _, h := range hosts {
		if h.Sending() {
			h.KeepSending(n)
		}
	}

	n.applyDue()

	for _, h := range n.hosts() {
		h.StartQueued(n)
	}

	for _, d := range n.devices {
		if s, ok := d.(*device.Switch); ok {
			s.Send(n)
		}
	}

	for _, h := range n.hosts() {
		h.Read(n, true)
	}

	if n.err != nil {
		return false
	}

	if now >= n.maxTicks {
		n.truncated = !n.Quiet() || n.scheduled > 0
		return false
	}

	return !n.Quiet()
}

func (n *Network) clearWires() {
	for _, w := range n.wires {
		if w != nil {
			w.Clear()
		}
	}

	for _, d := range n.devices {
		d.Reset()
	}
}

func (n *Network) applyDue() {
	due := n.due
	n.due = nil

	for _, inst := range due {
		if n.err != nil {
			return
		}

		if err := n.Apply(inst); err != nil {
			n.err = &InstructionError{Instruction: inst, Err: err}
		}
	}
}

// Quiet reports whether no host has anything to send and no switch has bits
// buffered.
func (n *Network) Quiet() bool {
	for _, d := range n.devices {
		switch d := d.(type) {
		case *device.Host:
			if d.Sending() || d.Pending() > 0 {
				return false
			}
		case *device.Switch:
			if !d.Idle() {
				return false
			}
		}
	}

	return true
}

func (n *Network) hosts() []*device.Host {
	var out []*device.Host

	for _, d := range n.devices {
		if h, ok := d.(*device.Host); ok {
			out = append(out, h)
		}
	}

	return out
}
