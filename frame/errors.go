package frame

import "errors"

// Errors returned when encoding or decoding frames.
var (
	ErrInvalidMAC     = errors.New("invalid MAC address")
	ErrInvalidHex     = errors.New("invalid hex string")
	ErrPayloadTooLong = errors.New("field longer than 255 bytes")
	ErrNoPreamble     = errors.New("frame does not start with a preamble")
	ErrTruncated      = errors.New("frame truncated")
	ErrLength         = errors.New("frame length does not match its header")
)
