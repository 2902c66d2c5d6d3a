// Package detection provides the error-detection codecs that fill and check
// the detection field of a frame.
package detection

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"sort"

	"github.com/sarchlab/ethersim/frame"
)

// ErrUnknownCodec is returned by ByName for names with no codec.
var ErrUnknownCodec = errors.New("unknown error detection codec")

// A Codec computes the detection field of a payload and validates received
// frames.
type Codec interface {
	Name() string

	// Encode returns the detection bytes for a payload.
	Encode(payload []byte) []byte

	// Check validates a whole frame, from the preamble to the end of the
	// detection field, in its textual bit form.
	Check(frameBits string) bool
}

var codecs = map[string]Codec{
	"crc32":    CRC32{},
	"checksum": Checksum{},
	"none":     None{},
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	return c, nil
}

// Names lists the registered codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for n := range codecs {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

func checkWith(enc frame.DetectionEncoder, frameBits string) bool {
	f, err := frame.Decode(frameBits)
	if err != nil {
		return false
	}

	return bytes.Equal(f.Detect, enc.Encode(f.Payload))
}

// CRC32 appends the IEEE CRC-32 of the payload, big endian.
type CRC32 struct{}

// Name returns "crc32".
func (CRC32) Name() string { return "crc32" }

// Encode returns four detection bytes.
func (CRC32) Encode(payload []byte) []byte {
	sum := crc32.ChecksumIEEE(payload)

	return []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
}

// Check recomputes the CRC over the received payload.
func (c CRC32) Check(frameBits string) bool {
	return checkWith(c, frameBits)
}

// Checksum appends one byte that makes the byte sum of payload and checksum
// zero.
type Checksum struct{}

// Name returns "checksum".
func (Checksum) Name() string { return "checksum" }

// Encode returns a single detection byte.
func (Checksum) Encode(payload []byte) []byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}

	return []byte{-sum}
}

// Check recomputes the checksum over the received payload.
func (c Checksum) Check(frameBits string) bool {
	return checkWith(c, frameBits)
}

// None carries no detection field and accepts every well-formed frame.
type None struct{}

// Name returns "none".
func (None) Name() string { return "none" }

// Encode returns no bytes.
func (None) Encode([]byte) []byte { return nil }

// Check only validates the frame layout.
func (None) Check(frameBits string) bool {
	_, err := frame.Decode(frameBits)

	return err == nil
}
