package device

import (
	"bytes"
	"errors"
	"log"
	"net/netip"

	"github.com/sarchlab/ethersim/frame"
)

// ARP payload markers, the ASCII text "ARPQ" and "ARPR".
var (
	arpQuery = []byte("ARPQ")
	arpReply = []byte("ARPR")
)

// ErrNoIP is returned when an operation needs the host's IP address before
// one is assigned.
var ErrNoIP = errors.New("host has no IP address")

// IPState is the IP configuration of a host.
type IPState struct {
	addr netip.Addr
	mask netip.Addr
}

// Addr returns the address, invalid when unassigned.
func (s IPState) Addr() netip.Addr {
	return s.addr
}

// Mask returns the subnet mask.
func (s IPState) Mask() netip.Addr {
	return s.mask
}

// Valid reports whether an address is assigned.
func (s IPState) Valid() bool {
	return s.addr.IsValid()
}

// ARPCache maps the IP addresses a host resolved to MAC addresses.
type ARPCache struct {
	entries map[netip.Addr]frame.MAC
}

// Lookup returns the MAC of ip, if resolved.
func (c *ARPCache) Lookup(ip netip.Addr) (frame.MAC, bool) {
	m, ok := c.entries[ip]
	return m, ok
}

// Len returns the number of resolved addresses.
func (c *ARPCache) Len() int {
	return len(c.entries)
}

func (c *ARPCache) put(ip netip.Addr, m frame.MAC) {
	if c.entries == nil {
		c.entries = make(map[netip.Addr]frame.MAC)
	}

	c.entries[ip] = m
}

// SetIP assigns the address and mask of the host. Both must be IPv4.
func (h *Host) SetIP(addr, mask netip.Addr) {
	if !addr.Is4() || !mask.Is4() {
		panic("host IP and mask must be IPv4")
	}

	h.ip = IPState{addr: addr, mask: mask}
}

// IP returns the IP configuration of the host.
func (h *Host) IP() IPState {
	return h.ip
}

// ARP returns the host's ARP cache.
func (h *Host) ARP() *ARPCache {
	return &h.arp
}

// ipHex renders an IPv4 address as eight hex digits.
func ipHex(ip netip.Addr) string {
	b := ip.As4()
	return frame.HexData(b[:])
}

// BuildQueryFrame returns the textual form of a broadcast ARP query for ip:
// the broadcast MAC, a space, and the payload as hex.
func BuildQueryFrame(ip netip.Addr) string {
	return frame.Broadcast.String() + " " +
		frame.HexData(arpQuery) + ipHex(ip)
}

func arpPayload(marker []byte, ip netip.Addr) []byte {
	b := ip.As4()
	return append(append([]byte{}, marker...), b[:]...)
}

func parseARP(payload []byte) (marker []byte, ip netip.Addr, ok bool) {
	if len(payload) != 8 {
		return nil, netip.Addr{}, false
	}

	var b [4]byte
	copy(b[:], payload[4:])

	return payload[:4], netip.AddrFrom4(b), true
}

// SendPacket sends data to the host owning ip. An unresolved address is
// first queried with a broadcast ARP frame; the data waits until the reply
// arrives.
func (h *Host) SendPacket(ip netip.Addr, data []byte) error {
	if !h.ip.Valid() {
		return ErrNoIP
	}

	// The destination does not change the frame size, so a payload that
	// frames now also frames once the address is resolved.
	if _, err := h.BuildFrame(frame.Broadcast, data, h.codec); err != nil {
		return err
	}

	if m, ok := h.arp.Lookup(ip); ok {
		return h.QueueFrame(m, data)
	}

	if h.parked == nil {
		h.parked = make(map[netip.Addr][][]byte)
	}

	_, querying := h.parked[ip]
	h.parked[ip] = append(h.parked[ip], data)

	if querying {
		return nil
	}

	return h.QueueFrame(frame.Broadcast, arpPayload(arpQuery, ip))
}

// Parked returns the number of payloads waiting for address resolution.
func (h *Host) Parked() int {
	n := 0
	for _, p := range h.parked {
		n += len(p)
	}

	return n
}

func (h *Host) handleARP(_ Fabric, rec FrameRecord) {
	marker, ip, ok := parseARP(rec.Payload)
	if !ok {
		return
	}

	switch {
	case bytes.Equal(marker, arpQuery):
		if h.ip.Valid() && ip == h.ip.addr && h.hasMAC {
			h.queueFrameMustSucceed(rec.Src, arpPayload(arpReply, h.ip.addr))
		}
	case bytes.Equal(marker, arpReply):
		h.arp.put(ip, rec.Src)
		h.flushParked(ip, rec.Src)
	}
}

func (h *Host) flushParked(ip netip.Addr, m frame.MAC) {
	waiting := h.parked[ip]
	delete(h.parked, ip)

	for _, data := range waiting {
		h.queueFrameMustSucceed(m, data)
	}
}

// queueFrameMustSucceed queues a payload already known to fit in a frame.
func (h *Host) queueFrameMustSucceed(dst frame.MAC, data []byte) {
	if err := h.QueueFrame(dst, data); err != nil {
		log.Panicf("host %s cannot frame a checked payload: %v", h.name, err)
	}
}

// IsARPPayload reports whether a payload is an ARP query or reply.
func IsARPPayload(payload []byte) bool {
	marker, _, ok := parseARP(payload)
	if !ok {
		return false
	}

	return bytes.Equal(marker, arpQuery) || bytes.Equal(marker, arpReply)
}
