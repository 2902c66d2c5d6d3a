package device

import (
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/wiring"
)

// Hook positions invoked by devices.
var (
	// HookPosSignalRecv fires when a port observes a signal.
	HookPosSignalRecv = &sim.HookPos{Name: "SignalRecv"}

	// HookPosSignalSend fires when a device places a signal on a port.
	HookPosSignalSend = &sim.HookPos{Name: "SignalSend"}

	// HookPosCollision fires when a signal cannot be placed because the
	// channel is taken.
	HookPosCollision = &sim.HookPos{Name: "Collision"}

	// HookPosFrameRecv fires when a host finishes assembling a frame.
	HookPosFrameRecv = &sim.HookPos{Name: "FrameRecv"}

	// HookPosMACLearned fires when a switch learns an address.
	HookPosMACLearned = &sim.HookPos{Name: "MACLearned"}
)

// A SignalRecord is the hook item for signal-level positions.
type SignalRecord struct {
	// Where is a port name, or the device name for host collisions.
	Where  string
	Signal wiring.Signal

	// Confirmed is set on host sends, which are logged as "ok".
	Confirmed bool
}

// A FrameRecord is the hook item of HookPosFrameRecv.
type FrameRecord struct {
	Host    string
	Dst     frame.MAC
	Src     frame.MAC
	Payload []byte
	Bits    string
	Valid   bool
}

// A LearnRecord is the hook item of HookPosMACLearned.
type LearnRecord struct {
	Switch string
	Port   int
	MAC    frame.MAC
}

func (b *Base) hook(dom Device, pos *sim.HookPos, item interface{}) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(sim.HookCtx{Domain: dom, Pos: pos, Item: item})
}
