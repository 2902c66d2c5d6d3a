package wiring

import "fmt"

// A Signal is the value a channel holds during one tick.
type Signal uint8

// The signals a channel can carry. NoSignal is an idle channel.
const (
	NoSignal Signal = iota
	Zero
	One
	Preamble
)

// String returns the textual bit form used in logs and frame strings. An
// idle channel renders as an empty string.
func (s Signal) String() string {
	switch s {
	case NoSignal:
		return ""
	case Zero:
		return "0"
	case One:
		return "1"
	case Preamble:
		return "2"
	default:
		return fmt.Sprintf("Signal(%d)", uint8(s))
	}
}

// IsBit reports whether the signal is a data bit.
func (s Signal) IsBit() bool {
	return s == Zero || s == One
}

// BitSignal converts a boolean bit into a Signal.
func BitSignal(b bool) Signal {
	if b {
		return One
	}

	return Zero
}

// ParseSignal converts a textual bit into a Signal.
func ParseSignal(r rune) (Signal, error) {
	switch r {
	case '0':
		return Zero, nil
	case '1':
		return One, nil
	case '2':
		return Preamble, nil
	default:
		return NoSignal, fmt.Errorf("%w: %q", ErrInvalidSignal, r)
	}
}

// SignalsString renders a signal sequence in its textual form.
func SignalsString(signals []Signal) string {
	buf := make([]byte, 0, len(signals))
	for _, s := range signals {
		buf = append(buf, s.String()...)
	}

	return string(buf)
}

// A Channel is one of the two directional signal paths of a wire.
type Channel uint8

// The two channels of a wire.
const (
	ChannelA Channel = iota
	ChannelB
)

func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	default:
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
}

// ParseSignals converts a textual bit string into signals.
func ParseSignals(text string) ([]Signal, error) {
	signals := make([]Signal, 0, len(text))
	for _, r := range text {
		s, err := ParseSignal(r)
		if err != nil {
			return nil, err
		}

		signals = append(signals, s)
	}

	return signals, nil
}
