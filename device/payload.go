package device

// PayloadStore keeps the frames a host received, in arrival order.
type PayloadStore struct {
	frames []FrameRecord
}

func (p *PayloadStore) add(rec FrameRecord) {
	p.frames = append(p.frames, rec)
}

// Len returns the number of frames received.
func (p *PayloadStore) Len() int {
	return len(p.frames)
}

// All returns the received frames.
func (p *PayloadStore) All() []FrameRecord {
	out := make([]FrameRecord, len(p.frames))
	copy(out, p.frames)

	return out
}

// Last returns the most recent frame.
func (p *PayloadStore) Last() (FrameRecord, bool) {
	if len(p.frames) == 0 {
		return FrameRecord{}, false
	}

	return p.frames[len(p.frames)-1], true
}

// Valid returns the payloads of the frames that passed error detection.
func (p *PayloadStore) Valid() [][]byte {
	var out [][]byte

	for _, f := range p.frames {
		if f.Valid {
			out = append(out, f.Payload)
		}
	}

	return out
}

// Payloads returns the host's received frames.
func (h *Host) Payloads() *PayloadStore {
	return &h.payloads
}
