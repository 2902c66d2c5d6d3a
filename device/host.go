package device

import (
	"net/netip"

	"github.com/iti/rngstream"

	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

const maxBackoffExponent = 10

type transmission struct {
	data       []wiring.Signal
	index      int
	tick       int
	isFrame    bool
	fromOutbox bool
}

type outgoing struct {
	data    []wiring.Signal
	isFrame bool
}

// A Host is an end device with a single port. It transmits signal strings
// bit by bit and assembles the frames it receives.
type Host struct {
	Base

	mac    frame.MAC
	hasMAC bool
	codec  detection.Codec
	rng    *rngstream.RngStream

	ip       IPState
	payloads PayloadStore
	arp      ARPCache
	parked   map[netip.Addr][][]byte

	tx      *transmission
	aborted bool

	outbox   []outgoing
	backoff  int
	attempts int

	rx receiver
}

// MAC returns the address of the host and whether one is assigned.
func (h *Host) MAC() (frame.MAC, bool) {
	return h.mac, h.hasMAC
}

// SetMAC assigns the address of the host.
func (h *Host) SetMAC(m frame.MAC) {
	h.mac = m
	h.hasMAC = true
}

// Codec returns the error detection codec used for frames.
func (h *Host) Codec() detection.Codec {
	return h.codec
}

// Sending reports whether a transmission is in progress.
func (h *Host) Sending() bool {
	return h.tx != nil
}

// Aborted reports whether the last transmission ended in a collision.
func (h *Host) Aborted() bool {
	return h.aborted
}

// Idle reports whether the host has nothing to send and no frame half read.
func (h *Host) Idle() bool {
	return h.tx == nil && len(h.outbox) == 0 && h.rx.state == rxIdle
}

// Send starts transmitting data. It is rejected while another transmission
// is pending. The first bit is placed on the wire right away; if that bit
// collides the transmission is dropped and Send returns false.
func (h *Host) Send(fab Fabric, data []wiring.Signal, isFrame bool) bool {
	return h.start(fab, data, isFrame, false)
}

func (h *Host) start(
	fab Fabric,
	data []wiring.Signal,
	isFrame bool,
	fromOutbox bool,
) bool {
	if h.tx != nil || len(data) == 0 {
		return false
	}

	h.tx = &transmission{
		data:       data,
		isFrame:    isFrame,
		fromOutbox: fromOutbox,
	}
	h.aborted = false

	if !h.place(fab, data[0]) {
		h.abort(fab)
		return false
	}

	return true
}

// KeepSending advances the transmission by one tick. Each bit is held for
// TicksPerBit ticks. After the last bit the host emits one idle signal and
// becomes free for a new Send. It returns whether the transmission goes on.
func (h *Host) KeepSending(fab Fabric) bool {
	if h.tx == nil {
		return false
	}

	tx := h.tx

	if tx.tick < fab.TicksPerBit()-1 {
		tx.tick++
		return h.placeOrAbort(fab, tx.data[tx.index])
	}

	if tx.index >= len(tx.data)-1 {
		h.place(fab, wiring.NoSignal)
		h.finish()

		return false
	}

	tx.index++
	tx.tick = 0

	return h.placeOrAbort(fab, tx.data[tx.index])
}

func (h *Host) placeOrAbort(fab Fabric, s wiring.Signal) bool {
	if h.place(fab, s) {
		return true
	}

	h.abort(fab)

	return false
}

// place puts one signal on the host's wire and through the device behind it.
func (h *Host) place(fab Fabric, s wiring.Signal) bool {
	w := h.wireAt(fab, 0)
	if w == nil {
		h.reportSend(s)
		return true
	}

	if s == wiring.NoSignal {
		deliver(fab, h, 0, s)
		return true
	}

	if err := w.Write(h.sendChannel[0], s); err != nil {
		h.reportCollision(s)
		return false
	}

	if res := deliver(fab, h, 0, s); res.IsCollision() {
		h.reportCollision(s)
		return false
	}

	h.reportSend(s)

	return true
}

func (h *Host) finish() {
	if h.tx.fromOutbox && len(h.outbox) > 0 {
		h.outbox = h.outbox[1:]
		h.attempts = 0
	}

	h.tx = nil
}

func (h *Host) abort(fab Fabric) {
	if h.tx.fromOutbox {
		h.scheduleRetry(fab.TicksPerBit())
	}

	h.tx = nil
	h.aborted = true
}

func (h *Host) reportSend(s wiring.Signal) {
	if s == wiring.NoSignal {
		return
	}

	h.hook(h, HookPosSignalSend,
		SignalRecord{Where: h.PortName(0), Signal: s, Confirmed: true})
}

func (h *Host) reportCollision(s wiring.Signal) {
	h.hook(h, HookPosCollision, SignalRecord{Where: h.name, Signal: s})
}

// Queue appends data to the outbox. Queued data is transmitted in order by
// StartQueued.
func (h *Host) Queue(data []wiring.Signal, isFrame bool) {
	if len(data) == 0 {
		return
	}

	h.outbox = append(h.outbox, outgoing{data: data, isFrame: isFrame})
}

// BuildFrame frames a payload from this host to dst. A nil codec leaves the
// detection field empty.
func (h *Host) BuildFrame(
	dst frame.MAC,
	payload []byte,
	codec detection.Codec,
) (frame.Frame, error) {
	var enc frame.DetectionEncoder
	if codec != nil {
		enc = codec
	}

	return frame.Build(dst, h.mac, payload, enc)
}

// QueueFrame frames a payload from this host to dst and queues it.
func (h *Host) QueueFrame(dst frame.MAC, payload []byte) error {
	f, err := h.BuildFrame(dst, payload, h.codec)
	if err != nil {
		return err
	}

	signals, err := f.Signals()
	if err != nil {
		return err
	}

	h.Queue(signals, true)

	return nil
}

// Pending returns the number of queued transmissions, including the one in
// progress.
func (h *Host) Pending() int {
	return len(h.outbox)
}

// StartQueued starts the head of the outbox if the host is free and not
// backing off after a collision. A collided start is retried after a random
// backoff of 1 to 2^k bit times, k being the number of consecutive
// collisions.
func (h *Host) StartQueued(fab Fabric) bool {
	if h.tx != nil || len(h.outbox) == 0 {
		return false
	}

	if h.backoff > 0 {
		h.backoff--
		return false
	}

	next := h.outbox[0]

	return h.start(fab, next.data, next.isFrame, true)
}

func (h *Host) scheduleRetry(ticksPerBit int) {
	h.attempts++

	k := h.attempts
	if k > maxBackoffExponent {
		k = maxBackoffExponent
	}

	h.backoff = h.backoffDraw(1<<k) * ticksPerBit
}

func (h *Host) backoffDraw(limit int) int {
	if h.rng == nil {
		return limit
	}

	return h.rng.RandInt(1, limit)
}
