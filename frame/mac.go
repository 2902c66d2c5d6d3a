package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// MAC is a 16-bit hardware address.
type MAC uint16

// Broadcast is the address every host accepts.
const Broadcast MAC = 0xFFFF

// MACBits is the width of an address on the wire.
const MACBits = 16

// ParseMAC parses an address written as four hex digits.
func ParseMAC(text string) (MAC, error) {
	if len(text) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMAC, text)
	}

	v, err := strconv.ParseUint(text, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMAC, text)
	}

	return MAC(v), nil
}

// MACFromBits parses an address written as 16 binary digits.
func MACFromBits(bits string) (MAC, error) {
	if len(bits) != MACBits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMAC, bits)
	}

	v, err := strconv.ParseUint(bits, 2, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMAC, bits)
	}

	return MAC(v), nil
}

// Bits returns the address as 16 binary digits, most significant first.
func (m MAC) Bits() string {
	return fmt.Sprintf("%016b", uint16(m))
}

// String returns the address as four hex digits.
func (m MAC) String() string {
	return fmt.Sprintf("%04X", uint16(m))
}

// IsBroadcast reports whether m is the broadcast address.
func (m MAC) IsBroadcast() bool {
	return m == Broadcast
}

// BinToHex converts a binary digit string into upper-case hex, padding the
// front to whole nibbles.
func BinToHex(bits string) string {
	if bits == "" {
		return ""
	}

	if pad := len(bits) % 4; pad != 0 {
		bits = strings.Repeat("0", 4-pad) + bits
	}

	var sb strings.Builder
	for i := 0; i < len(bits); i += 4 {
		v, err := strconv.ParseUint(bits[i:i+4], 2, 8)
		if err != nil {
			return ""
		}

		sb.WriteString(strconv.FormatUint(v, 16))
	}

	return strings.ToUpper(sb.String())
}

// HexToBin converts hex digits into binary digits, four per hex digit.
func HexToBin(text string) (string, error) {
	var sb strings.Builder
	for _, r := range text {
		v, err := strconv.ParseUint(string(r), 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidHex, text)
		}

		fmt.Fprintf(&sb, "%04b", v)
	}

	return sb.String(), nil
}
