package device

import (
	"github.com/sarchlab/ethersim/wiring"
)

// A Hub repeats every signal it receives on one port to all its other
// connected ports. All its ports share one collision domain.
type Hub struct {
	Base

	busy bool
}

// Resend floods a signal received at port to every other connected port. A
// taken channel, here or further down a chain of resenders, aborts the flood
// with a collision; ports written before that keep their signal.
//
// An idle signal is not written anywhere. It is only passed on to the
// resenders behind the hub so that they can end their current frame.
func (h *Hub) Resend(
	fab Fabric,
	s wiring.Signal,
	port int,
	commit bool,
) ForwardResult {
	h.portMustExist(port)

	// Re-entering a hub while it floods means the topology has a loop.
	if h.busy {
		return ForwardResult{Kind: Collided}
	}

	h.busy = true
	defer func() { h.busy = false }()

	if commit && s != wiring.NoSignal {
		h.hook(h, HookPosSignalRecv,
			SignalRecord{Where: h.PortName(port), Signal: s})
	}

	kind := Probed
	if commit {
		kind = Forwarded
	}

	used := make([]int, 0, len(h.ports)-1)

	for j := range h.ports {
		if j == port {
			continue
		}

		w := h.wireAt(fab, j)
		if w == nil {
			continue
		}

		if s == wiring.NoSignal {
			if commit {
				deliver(fab, h, j, s)
			}

			continue
		}

		res, ok := h.floodPort(fab, w, j, s, commit)
		if ok {
			used = append(used, j)
		}

		if res.IsCollision() {
			return ForwardResult{Kind: Collided, Ports: used}
		}
	}

	if commit {
		for _, j := range used {
			h.hook(h, HookPosSignalSend,
				SignalRecord{Where: h.PortName(j), Signal: s})
		}
	}

	return ForwardResult{Kind: kind, Ports: used}
}

// floodPort places s on port j. It reports whether the hub wrote (or, when
// probing, could write) the port.
func (h *Hub) floodPort(
	fab Fabric,
	w *wiring.Wire,
	j int,
	s wiring.Signal,
	commit bool,
) (ForwardResult, bool) {
	ch := h.sendChannel[j]
	if w.Occupied(ch) {
		h.hook(h, HookPosCollision,
			SignalRecord{Where: h.PortName(j), Signal: s})

		return ForwardResult{Kind: Collided}, false
	}

	if !commit {
		return probeThrough(fab, h, j, s), true
	}

	if err := w.Write(ch, s); err != nil {
		return ForwardResult{Kind: Collided}, false
	}

	return deliver(fab, h, j, s), true
}
