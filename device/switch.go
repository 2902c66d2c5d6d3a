package device

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

type parsePhase uint8

const (
	parseNone parsePhase = iota
	parseDst
	parseSrc
	parseDone
)

// switchPort is the receive and forwarding state of one switch port.
type switchPort struct {
	learned map[frame.MAC]struct{}
	queue   bitQueue

	phase   parsePhase
	header  *frameHeader
	dstBits strings.Builder
	srcBits strings.Builder

	recvPace  int
	sendPace  int
	heard     bool
	heardPrev bool
}

func newSwitchPort() *switchPort {
	return &switchPort{
		learned: map[frame.MAC]struct{}{frame.Broadcast: {}},
	}
}

func (p *switchPort) endFrame() {
	if p.header != nil && p.header.state == headerParsing {
		p.header.state = headerAbandoned
	}

	p.phase = parseNone
	p.header = nil
	p.dstBits.Reset()
	p.srcBits.Reset()
	p.recvPace = 0
}

// A Switch buffers the bits it receives on each port and forwards them to
// the ports where the destination address was learned, flooding when the
// address is unknown. Ports do not share a collision domain.
type Switch struct {
	Base

	state []*switchPort
}

// Resend takes a signal arriving at port into the port's buffer. A switch
// stores bits before forwarding, so receiving never collides and a probe
// changes nothing.
func (s *Switch) Resend(
	fab Fabric,
	sig wiring.Signal,
	port int,
	commit bool,
) ForwardResult {
	s.portMustExist(port)

	if !commit {
		return ForwardResult{Kind: Probed}
	}

	p := s.state[port]

	if sig == wiring.NoSignal {
		p.endFrame()
		return ForwardResult{Kind: Forwarded}
	}

	s.hook(s, HookPosSignalRecv,
		SignalRecord{Where: s.PortName(port), Signal: sig})

	// A silent tick means the sender stopped without an idle signal.
	if !p.heardPrev {
		p.recvPace = 0
	}

	p.heard = true

	if p.recvPace == 0 {
		s.take(port, sig)
	}

	p.recvPace++
	if p.recvPace >= fab.TicksPerBit() {
		p.recvPace = 0
	}

	return ForwardResult{Kind: Forwarded}
}

// take buffers one sampled bit and advances header parsing.
func (s *Switch) take(port int, sig wiring.Signal) {
	p := s.state[port]

	if sig == wiring.Preamble {
		p.endFrame()
		p.phase = parseDst
		p.header = &frameHeader{}
		p.recvPace = 0
	}

	p.queue.Push(bufferedBit{signal: sig, header: p.header})

	if sig == wiring.Preamble {
		return
	}

	switch p.phase {
	case parseDst:
		p.dstBits.WriteString(sig.String())
		if p.dstBits.Len() == frame.MACBits {
			dst, _ := frame.MACFromBits(p.dstBits.String())
			p.header.dst = dst
			p.header.state = headerKnown
			p.phase = parseSrc
		}
	case parseSrc:
		p.srcBits.WriteString(sig.String())
		if p.srcBits.Len() == frame.MACBits {
			src, _ := frame.MACFromBits(p.srcBits.String())
			s.learn(port, src)
			p.phase = parseDone
		}
	}
}

// learn adds src to the table of port unless some port already knows it.
func (s *Switch) learn(port int, src frame.MAC) {
	if src.IsBroadcast() {
		return
	}

	for _, p := range s.state {
		if _, ok := p.learned[src]; ok {
			return
		}
	}

	s.state[port].learned[src] = struct{}{}

	s.hook(s, HookPosMACLearned,
		LearnRecord{Switch: s.name, Port: port, MAC: src})
}

// Send forwards the head bit of every port buffer. Each bit is held on the
// outgoing wires for one bit time before the next one leaves.
func (s *Switch) Send(fab Fabric) {
	for i, p := range s.state {
		if p.queue.Len() == 0 {
			continue
		}

		head := p.queue.Peek()
		if head.header != nil && head.header.state == headerParsing {
			continue
		}

		targets := s.targets(fab, i, head.header)

		sent := false
		for _, j := range targets {
			if s.forwardBit(fab, j, head.signal) {
				sent = true
			}
		}

		if !sent && len(targets) > 0 {
			continue
		}

		p.sendPace++
		if p.sendPace >= fab.TicksPerBit() {
			p.queue.Pop()
			p.sendPace = 0
		}
	}
}

// targets returns the ports a bit received on port i goes out of.
func (s *Switch) targets(fab Fabric, i int, hdr *frameHeader) []int {
	if hdr != nil && hdr.state == headerKnown {
		direct := s.directTargets(fab, i, hdr.dst)
		if len(direct) > 0 {
			return direct
		}
	}

	var all []int

	for j := range s.ports {
		if j != i && s.wireAt(fab, j) != nil {
			all = append(all, j)
		}
	}

	return all
}

// directTargets returns the connected ports other than i that learned dst.
// Entries on ports whose wire is gone are purged.
func (s *Switch) directTargets(fab Fabric, i int, dst frame.MAC) []int {
	if dst.IsBroadcast() {
		return nil
	}

	var out []int

	for j, p := range s.state {
		if _, ok := p.learned[dst]; !ok {
			continue
		}

		if s.wireAt(fab, j) == nil {
			delete(p.learned, dst)
			continue
		}

		if j != i {
			out = append(out, j)
		}
	}

	return out
}

// forwardBit places sig on port j if its channel is free and hands it to the
// device behind the port. Collisions further down are not undone.
func (s *Switch) forwardBit(fab Fabric, j int, sig wiring.Signal) bool {
	w := s.wireAt(fab, j)
	ch := s.sendChannel[j]

	if w.Occupied(ch) {
		s.hook(s, HookPosCollision,
			SignalRecord{Where: s.PortName(j), Signal: sig})

		return false
	}

	if err := w.Write(ch, sig); err != nil {
		return false
	}

	if res := deliver(fab, s, j, sig); res.IsCollision() {
		s.hook(s, HookPosCollision,
			SignalRecord{Where: s.PortName(j), Signal: sig})
	}

	s.hook(s, HookPosSignalSend,
		SignalRecord{Where: s.PortName(j), Signal: sig})

	return true
}

// CanSend reports whether every connected port other than i has a free
// outgoing channel.
func (s *Switch) CanSend(fab Fabric, i int) bool {
	s.portMustExist(i)

	for j := range s.ports {
		if j == i {
			continue
		}

		w := s.wireAt(fab, j)
		if w != nil && w.Occupied(s.sendChannel[j]) {
			return false
		}
	}

	return true
}

// Learned returns the addresses learned on port i, sorted. The broadcast
// address every port starts with is included.
func (s *Switch) Learned(i int) []frame.MAC {
	s.portMustExist(i)

	out := make([]frame.MAC, 0, len(s.state[i].learned))
	for m := range s.state[i].learned {
		out = append(out, m)
	}

	slices.Sort(out)

	return out
}

// Buffered returns the number of bits waiting on port i.
func (s *Switch) Buffered(i int) int {
	s.portMustExist(i)

	return s.state[i].queue.Len()
}

// Idle reports whether no port has bits left to forward.
func (s *Switch) Idle() bool {
	for _, p := range s.state {
		if p.queue.Len() > 0 {
			return false
		}
	}

	return true
}

// Unplug detaches port i and drops its buffered bits. Learned addresses are
// kept.
func (s *Switch) Unplug(i int) {
	s.Base.Unplug(i)

	p := s.state[i]
	p.endFrame()
	p.queue.Clear()
	p.sendPace = 0
	p.heard = false
	p.heardPrev = false
}

// Reset clears the per-tick state.
func (s *Switch) Reset() {
	s.Base.Reset()

	for _, p := range s.state {
		// The sender went silent without an idle signal.
		if p.heardPrev && !p.heard {
			p.endFrame()
		}

		p.heardPrev = p.heard
		p.heard = false
	}
}
