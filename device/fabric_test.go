package device

import (
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/wiring"
)

// testNet is a minimal Fabric that drives devices the way the network does.
type testNet struct {
	tpb     int
	devices []Device
	wires   []*wiring.Wire
}

func newTestNet(tpb int, devices ...Device) *testNet {
	n := &testNet{tpb: tpb}
	for _, d := range devices {
		d.SetIndex(len(n.devices))
		n.devices = append(n.devices, d)
	}

	return n
}

func (n *testNet) TicksPerBit() int { return n.tpb }

func (n *testNet) Wire(h wiring.Handle) *wiring.Wire {
	if int(h) < 0 || int(h) >= len(n.wires) {
		return nil
	}

	return n.wires[h]
}

func (n *testNet) LookupIndex(name string) (int, bool) {
	for i, d := range n.devices {
		if d.Name() == name {
			return i, true
		}
	}

	return 0, false
}

func (n *testNet) LookupByIndex(i int) Device {
	if i < 0 || i >= len(n.devices) {
		return nil
	}

	return n.devices[i]
}

func (n *testNet) DeviceCount() int { return len(n.devices) }

func (n *testNet) connect(a Device, ai int, b Device, bi int) {
	h := wiring.Handle(len(n.wires))
	w := wiring.Connect(h,
		wiring.Endpoint{Device: a.Index(), Port: ai, Name: a.PortName(ai)},
		wiring.Endpoint{Device: b.Index(), Port: bi, Name: b.PortName(bi)})
	n.wires = append(n.wires, w)

	a.Plug(ai, PluggedInto(h, wiring.EndA))
	b.Plug(bi, PluggedInto(h, wiring.EndB))

	_, aSwitch := a.(*Switch)
	_, bSwitch := b.(*Switch)

	if aSwitch || bSwitch {
		a.SetSendChannel(ai, wiring.ChannelA)
		b.SetSendChannel(bi, wiring.ChannelB)
	}
}

func (n *testNet) hosts() []*Host {
	var out []*Host

	for _, d := range n.devices {
		if h, ok := d.(*Host); ok {
			out = append(out, h)
		}
	}

	return out
}

func (n *testNet) tick() {
	for _, w := range n.wires {
		w.Clear()
	}

	for _, d := range n.devices {
		d.Reset()
	}

	for _, h := range n.hosts() {
		if h.Sending() {
			h.KeepSending(n)
		}
	}

	for _, h := range n.hosts() {
		h.StartQueued(n)
	}

	for _, d := range n.devices {
		if s, ok := d.(*Switch); ok {
			s.Send(n)
		}
	}

	for _, h := range n.hosts() {
		h.Read(n, true)
	}
}

func (n *testNet) idle() bool {
	for _, d := range n.devices {
		switch d := d.(type) {
		case *Host:
			if !d.Idle() {
				return false
			}
		case *Switch:
			if !d.Idle() {
				return false
			}
		}
	}

	return true
}

// runUntilIdle ticks until nothing is in flight, at most limit ticks. It
// returns the number of ticks run.
func (n *testNet) runUntilIdle(limit int) int {
	for i := 1; i <= limit; i++ {
		n.tick()

		if n.idle() {
			return i
		}
	}

	return limit
}

// hookRecorder collects the hook invocations of the devices it is attached
// to.
type hookRecorder struct {
	ctxs []sim.HookCtx
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	r.ctxs = append(r.ctxs, ctx)
}

func (r *hookRecorder) signals(pos *sim.HookPos, domain Device) []SignalRecord {
	var out []SignalRecord

	for _, ctx := range r.ctxs {
		if ctx.Pos != pos || (domain != nil && ctx.Domain != domain) {
			continue
		}

		out = append(out, ctx.Item.(SignalRecord))
	}

	return out
}

func (r *hookRecorder) count(pos *sim.HookPos) int {
	n := 0

	for _, ctx := range r.ctxs {
		if ctx.Pos == pos {
			n++
		}
	}

	return n
}

func (r *hookRecorder) reset() {
	r.ctxs = nil
}
