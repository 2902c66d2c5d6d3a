package device

import (
	"fmt"

	"github.com/sarchlab/ethersim/wiring"
)

// ForwardKind tells how a Resend call ended.
type ForwardKind uint8

// The outcomes of Resend.
const (
	// Probed is a successful dry run; nothing was written.
	Probed ForwardKind = iota

	// Forwarded means the signal was committed.
	Forwarded

	// Collided means a channel on the way was taken.
	Collided
)

// ForwardResult is the outcome of a Resend call. Ports lists the local ports
// the signal was (or, when probing, would be) placed on before the call
// returned. A collision does not roll back ports already written.
type ForwardResult struct {
	Kind  ForwardKind
	Ports []int
}

// IsCollision reports whether the resend hit a collision.
func (r ForwardResult) IsCollision() bool {
	return r.Kind == Collided
}

// A Resender is a device that forwards signals between its ports instead of
// consuming them.
type Resender interface {
	Device

	// Resend handles a signal arriving at a port. With commit false it only
	// checks whether forwarding would collide and changes nothing. A probe
	// that finds no collision followed by a commit never collides because of
	// the probe.
	Resend(fab Fabric, s wiring.Signal, port int, commit bool) ForwardResult
}

// forwardInto hands a signal that reached a resender's port to the resender:
// probe first, then commit and record the read.
func forwardInto(
	fab Fabric,
	r Resender,
	s wiring.Signal,
	port int,
) ForwardResult {
	if res := r.Resend(fab, s, port, false); res.IsCollision() {
		return res
	}

	res := r.Resend(fab, s, port, true)
	if !res.IsCollision() && s != wiring.NoSignal {
		r.SetLastRead(port, s)
	}

	return res
}

// deliver hands a signal just placed on the wire at port i of d to the device
// at the other end. Resenders forward it on; hosts record it as read.
func deliver(fab Fabric, d Device, i int, s wiring.Signal) ForwardResult {
	peer, peerPort := peerOf(fab, d, i)

	switch peer := peer.(type) {
	case nil:
		return ForwardResult{Kind: Forwarded}
	case *Hub:
		return forwardInto(fab, peer, s, peerPort)
	case *Switch:
		return forwardInto(fab, peer, s, peerPort)
	case *Host:
		if s != wiring.NoSignal {
			peer.SetLastRead(peerPort, s)
		}

		return ForwardResult{Kind: Forwarded}
	default:
		panic(fmt.Sprintf("unknown device type %T", peer))
	}
}

// probeThrough checks whether a signal placed at port i of d would collide
// further down the chain, without committing.
func probeThrough(fab Fabric, d Device, i int, s wiring.Signal) ForwardResult {
	peer, peerPort := peerOf(fab, d, i)

	switch peer := peer.(type) {
	case nil, *Host:
		return ForwardResult{Kind: Probed}
	case *Hub:
		return peer.Resend(fab, s, peerPort, false)
	case *Switch:
		return peer.Resend(fab, s, peerPort, false)
	default:
		panic(fmt.Sprintf("unknown device type %T", peer))
	}
}
