// Package frame encodes and decodes the bit-serial frame format:
//
//	PREAMBLE | DST(16) | SRC(16) | SIZE(8) | OFFSET(8) | PAYLOAD | DETECT
//
// SIZE and OFFSET count the payload and detection bytes.
package frame

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/ethersim/wiring"
)

// Field widths, in bits.
const (
	SizeBits   = 8
	OffsetBits = 8
	HeaderBits = 1 + 2*MACBits + SizeBits + OffsetBits

	maxFieldBytes = 255
)

// A DetectionEncoder computes the detection field of a payload.
type DetectionEncoder interface {
	Encode(payload []byte) []byte
}

// A Frame is a decoded frame.
type Frame struct {
	Dst     MAC
	Src     MAC
	Payload []byte
	Detect  []byte
}

// Build frames a payload, computing its detection field with enc. A nil
// encoder leaves the detection field empty.
func Build(dst, src MAC, payload []byte, enc DetectionEncoder) (Frame, error) {
	f := Frame{Dst: dst, Src: src, Payload: payload}
	if enc != nil {
		f.Detect = enc.Encode(payload)
	}

	if len(f.Payload) > maxFieldBytes || len(f.Detect) > maxFieldBytes {
		return Frame{}, ErrPayloadTooLong
	}

	return f, nil
}

// Bits returns the textual wire form of the frame.
func (f Frame) Bits() (string, error) {
	if len(f.Payload) > maxFieldBytes || len(f.Detect) > maxFieldBytes {
		return "", ErrPayloadTooLong
	}

	var sb strings.Builder
	sb.WriteString(wiring.Preamble.String())
	sb.WriteString(f.Dst.Bits())
	sb.WriteString(f.Src.Bits())
	fmt.Fprintf(&sb, "%08b", len(f.Payload))
	fmt.Fprintf(&sb, "%08b", len(f.Detect))
	writeBytes(&sb, f.Payload)
	writeBytes(&sb, f.Detect)

	return sb.String(), nil
}

// Signals returns the frame as the signal sequence a host transmits.
func (f Frame) Signals() ([]wiring.Signal, error) {
	bits, err := f.Bits()
	if err != nil {
		return nil, err
	}

	return wiring.ParseSignals(bits)
}

func writeBytes(sb *strings.Builder, data []byte) {
	for _, b := range data {
		fmt.Fprintf(sb, "%08b", b)
	}
}

// Decode parses the textual wire form of a frame.
func Decode(bits string) (Frame, error) {
	if bits == "" || bits[0] != '2' {
		return Frame{}, ErrNoPreamble
	}

	if len(bits) < HeaderBits {
		return Frame{}, ErrTruncated
	}

	f := Frame{}
	p := 1

	var err error
	if f.Dst, err = MACFromBits(bits[p : p+MACBits]); err != nil {
		return Frame{}, err
	}
	p += MACBits

	if f.Src, err = MACFromBits(bits[p : p+MACBits]); err != nil {
		return Frame{}, err
	}
	p += MACBits

	size, err := ParseCount(bits[p : p+SizeBits])
	if err != nil {
		return Frame{}, err
	}
	p += SizeBits

	offset, err := ParseCount(bits[p : p+OffsetBits])
	if err != nil {
		return Frame{}, err
	}
	p += OffsetBits

	if len(bits) != p+8*(size+offset) {
		return Frame{}, ErrLength
	}

	if f.Payload, err = BitsToBytes(bits[p : p+8*size]); err != nil {
		return Frame{}, err
	}
	p += 8 * size

	if f.Detect, err = BitsToBytes(bits[p:]); err != nil {
		return Frame{}, err
	}

	return f, nil
}

// ParseCount reads an 8-bit binary count field.
func ParseCount(bits string) (int, error) {
	v, err := strconv.ParseUint(bits, 2, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: bad count %q", ErrTruncated, bits)
	}

	return int(v), nil
}

// BitsToBytes packs binary digits, eight per byte, into bytes.
func BitsToBytes(bits string) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, ErrLength
	}

	out := make([]byte, 0, len(bits)/8)
	for i := 0; i < len(bits); i += 8 {
		v, err := strconv.ParseUint(bits[i:i+8], 2, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: bad byte %q", ErrLength, bits[i:i+8])
		}

		out = append(out, byte(v))
	}

	return out, nil
}

// ParseHexData parses payload data written as hex digits. An odd number of
// digits is padded with a leading zero.
func ParseHexData(text string) ([]byte, error) {
	if len(text)%2 == 1 {
		text = "0" + text
	}

	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, text)
	}

	return data, nil
}

// HexData renders payload bytes as upper-case hex.
func HexData(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
