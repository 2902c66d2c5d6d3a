package device

import (
	"strings"

	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

type rxState uint8

const (
	rxIdle rxState = iota
	rxDst
	rxSrc
	rxSize
	rxOffset
	rxPayload
	rxDetect
)

// receiver assembles a frame from the bits a host samples, one sample per
// bit time.
type receiver struct {
	state   rxState
	counter int

	dst    strings.Builder
	src    strings.Builder
	size   strings.Builder
	offset strings.Builder
	data   strings.Builder
	detect strings.Builder

	payloadBits int
	detectBits  int
}

func (r *receiver) clear() {
	r.state = rxIdle
	r.counter = 0
	r.dst.Reset()
	r.src.Reset()
	r.size.Reset()
	r.offset.Reset()
	r.data.Reset()
	r.detect.Reset()
	r.payloadBits = 0
	r.detectBits = 0
}

func (r *receiver) restart() {
	r.clear()
	r.state = rxDst
}

func (r *receiver) field() *strings.Builder {
	switch r.state {
	case rxDst:
		return &r.dst
	case rxSrc:
		return &r.src
	case rxSize:
		return &r.size
	case rxOffset:
		return &r.offset
	case rxPayload:
		return &r.data
	case rxDetect:
		return &r.detect
	default:
		return nil
	}
}

func (r *receiver) bits() string {
	var sb strings.Builder

	sb.WriteString(wiring.Preamble.String())
	sb.WriteString(r.dst.String())
	sb.WriteString(r.src.String())
	sb.WriteString(r.size.String())
	sb.WriteString(r.offset.String())
	sb.WriteString(r.data.String())
	sb.WriteString(r.detect.String())

	return sb.String()
}

// Read returns the signal the host observed this tick. With report set the
// signal is logged and fed to the frame assembler; without it Read only
// peeks.
func (h *Host) Read(fab Fabric, report bool) wiring.Signal {
	if !h.ports[0].connected {
		return wiring.NoSignal
	}

	s := h.lastRead[0]
	if !report {
		return s
	}

	if s != wiring.NoSignal {
		h.hook(h, HookPosSignalRecv,
			SignalRecord{Where: h.PortName(0), Signal: s})
	}

	if !h.assemble(fab, s) {
		return s
	}

	if h.rx.counter < fab.TicksPerBit()-1 {
		h.rx.counter++
	} else {
		h.rx.counter = 0
	}

	return s
}

// assemble advances the receive state machine. It returns false when the
// sample counter must not move this tick.
func (h *Host) assemble(fab Fabric, s wiring.Signal) bool {
	r := &h.rx

	if r.state == rxIdle {
		if s == wiring.Preamble {
			r.state = rxDst
		}

		return true
	}

	switch s {
	case wiring.NoSignal:
		return false
	case wiring.Preamble:
		r.restart()
		return false
	}

	field := r.field()
	if r.counter == 0 {
		field.WriteString(s.String())
	}

	switch r.state {
	case rxDst:
		if field.Len() >= frame.MACBits {
			h.checkDestination()
		}
	case rxSrc:
		if field.Len() >= frame.MACBits {
			r.state = rxSize
		}
	case rxSize:
		if field.Len() >= frame.SizeBits {
			r.payloadBits = 8 * h.count(&r.size)
			r.state = rxOffset
		}
	case rxOffset:
		if field.Len() >= frame.OffsetBits {
			r.detectBits = 8 * h.count(&r.offset)
			h.skipEmptyFields(fab)
		}
	case rxPayload:
		if field.Len() >= r.payloadBits {
			r.state = rxDetect
			h.skipEmptyFields(fab)
		}
	case rxDetect:
		if field.Len() >= r.detectBits {
			h.complete(fab)
		}
	}

	return true
}

func (h *Host) checkDestination() {
	dst, err := frame.MACFromBits(h.rx.dst.String())
	if err == nil && (dst.IsBroadcast() || (h.hasMAC && dst == h.mac)) {
		h.rx.state = rxSrc
		return
	}

	h.rx.clear()
}

func (h *Host) count(field *strings.Builder) int {
	n, err := frame.ParseCount(field.String())
	if err != nil {
		return 0
	}

	return n
}

// skipEmptyFields moves past payload and detection fields of zero length.
func (h *Host) skipEmptyFields(fab Fabric) {
	r := &h.rx

	if r.state == rxOffset {
		r.state = rxPayload
	}

	if r.state == rxPayload && r.payloadBits == 0 {
		r.state = rxDetect
	}

	if r.state == rxDetect && r.detectBits == 0 {
		h.complete(fab)
	}
}

func (h *Host) complete(fab Fabric) {
	r := &h.rx
	bits := r.bits()

	rec := FrameRecord{
		Host:  h.name,
		Bits:  bits,
		Valid: h.codec.Check(bits),
	}
	rec.Dst, _ = frame.MACFromBits(r.dst.String())
	rec.Src, _ = frame.MACFromBits(r.src.String())
	rec.Payload, _ = frame.BitsToBytes(r.data.String())

	r.clear()

	h.payloads.add(rec)
	h.hook(h, HookPosFrameRecv, rec)

	if rec.Valid {
		h.handleARP(fab, rec)
	}
}
